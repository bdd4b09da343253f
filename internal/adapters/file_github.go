package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schema-check/internal/shared"
)

const defaultGitHubEndpoint = "https://api.github.com"
const defaultGitHubTimeout = 30 * time.Second

// GitHubFileAdapter loads raw file contents through the GitHub contents
// API, pinned to a ref.
type GitHubFileAdapter struct {
	Endpoint   string
	Repository string
	Token      string
	Client     *http.Client
}

func NewGitHubFileAdapter(endpoint string, repository string, token string) GitHubFileAdapter {
	if endpoint == "" {
		endpoint = defaultGitHubEndpoint
	}
	return GitHubFileAdapter{
		Endpoint:   strings.TrimSuffix(endpoint, "/"),
		Repository: repository,
		Token:      token,
		Client:     &http.Client{Timeout: defaultGitHubTimeout},
	}
}

func (a GitHubFileAdapter) Load(ctx context.Context, ref string, path string) (string, error) {
	requestURL := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s",
		a.Endpoint, a.Repository, escapePath(path), url.QueryEscape(ref))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build contents request").
			WithCause(err)
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")
	req.Header.Set("Authorization", "Bearer "+a.Token)

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to load %s at %s", path, ref)).
			WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read contents response").
			WithCause(err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("schema file %s not found at %s", path, ref)).
			WithCause(shared.HTTPStatusError(resp.StatusCode, requestURL))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("github token was rejected").
			WithCause(shared.HTTPStatusError(resp.StatusCode, requestURL))
	case resp.StatusCode != http.StatusOK:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to load %s at %s", path, ref)).
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, requestURL, string(body)))
	}
	return string(body), nil
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
