package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	githubUC "github.com/hurmain7/devconnect/internal/application/usecase/github"
	"github.com/hurmain7/devconnect/pkg/logger"
)

type GithubHandler struct {
	listReposUseCase *githubUC.ListReposUseCase
	logger           logger.Logger
}

func NewGithubHandler(uc *githubUC.ListReposUseCase, log logger.Logger) *GithubHandler {
	return &GithubHandler{listReposUseCase: uc, logger: log}
}

func (h *GithubHandler) ListRepos(c *gin.Context) {
	output, err := h.listReposUseCase.Execute(c.Request.Context(), githubUC.ListReposInput{
		Username: c.Param("username"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", output.Repos)
}
