package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/pkg/apperror"
	"github.com/hurmain7/devconnect/pkg/logger"
)

var tracer = otel.Tracer("github_usecase")

type ListReposUseCase struct {
	lister service.RepoLister
	logger logger.Logger
}

func NewListReposUseCase(lister service.RepoLister, log logger.Logger) *ListReposUseCase {
	return &ListReposUseCase{lister: lister, logger: log}
}

type ListReposInput struct {
	Username string
}

type ListReposOutput struct {
	Repos json.RawMessage
}

func (uc *ListReposUseCase) Execute(ctx context.Context, input ListReposInput) (*ListReposOutput, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(attribute.String("github.username", input.Username))

	notFound := apperror.NewNotFoundMessage(
		"No github profile found",
		fmt.Sprintf("github user '%s' has no listable repositories", input.Username),
	)

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, notFound
	}

	repos, err := uc.lister.ListRepos(ctx, username)
	if err != nil {
		if errors.Is(err, service.ErrGithubNotFound) {
			return nil, notFound
		}
		span.RecordError(err)
		return nil, apperror.NewInternal("github repository listing failed", err)
	}
	return &ListReposOutput{Repos: repos}, nil
}
