package service

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrGithubNotFound is returned when GitHub answers with anything but 200.
var ErrGithubNotFound = errors.New("github user not found")

// RepoLister lists the most recently created public repositories of a GitHub user.
type RepoLister interface {
	ListRepos(ctx context.Context, username string) (json.RawMessage, error)
}
