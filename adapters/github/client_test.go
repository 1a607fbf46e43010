package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/config"
	"github.com/hurmain7/devconnect/pkg/logger"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	var cfg config.Config
	cfg.Github.BaseURL = baseURL
	cfg.Github.ClientID = "id"
	cfg.Github.Secret = "secret"
	cfg.Github.Timeout = timeout
	return NewClient(cfg, logger.NewNop())
}

func TestListRepos_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/ada/repos", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "created", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("direction"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		id, secret, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", id)
		assert.Equal(t, "secret", secret)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"analytical-engine","stargazers_count":7}]`))
	}))
	defer srv.Close()

	repos, err := newTestClient(srv.URL+"/", time.Second).ListRepos(context.Background(), "ada")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"analytical-engine","stargazers_count":7}]`, string(repos))
}

func TestListRepos_NonOKIsNotFound(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"Not Found"}`))
		}))

		_, err := newTestClient(srv.URL, time.Second).ListRepos(context.Background(), "ghost")
		assert.ErrorIs(t, err, service.ErrGithubNotFound, "status %d", status)
		srv.Close()
	}
}

func TestListRepos_EscapesUsername(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).ListRepos(context.Background(), "a/b?c")
	require.NoError(t, err)
	assert.Equal(t, "/users/a%2Fb%3Fc/repos", gotPath)
}

func TestListRepos_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).ListRepos(context.Background(), "ada")
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrGithubNotFound)
}

func TestListRepos_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(srv.URL, 50*time.Millisecond).ListRepos(context.Background(), "ada")
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrGithubNotFound)
}
