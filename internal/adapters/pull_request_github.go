package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schema-check/internal/shared"
	"schema-check/internal/types"
)

// GitHubPullRequestAdapter resolves the pull request associated with a
// commit via the commit-pulls API.
type GitHubPullRequestAdapter struct {
	Endpoint   string
	Repository string
	Token      string
	Client     *http.Client
}

func NewGitHubPullRequestAdapter(endpoint string, repository string, token string) GitHubPullRequestAdapter {
	if endpoint == "" {
		endpoint = defaultGitHubEndpoint
	}
	return GitHubPullRequestAdapter{
		Endpoint:   strings.TrimSuffix(endpoint, "/"),
		Repository: repository,
		Token:      token,
		Client:     &http.Client{Timeout: defaultGitHubTimeout},
	}
}

type pullResponse struct {
	Number int    `json:"number"`
	State  string `json:"state"`
	Base   struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

func (a GitHubPullRequestAdapter) AssociatedPullRequest(ctx context.Context, commitSHA string) (*types.PullRequest, error) {
	requestURL := fmt.Sprintf("%s/repos/%s/commits/%s/pulls",
		a.Endpoint, a.Repository, url.PathEscape(commitSHA))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build commit pulls request").
			WithCause(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+a.Token)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to look up associated pull request").
			WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read commit pulls response").
			WithCause(err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("github token was rejected").
			WithCause(shared.HTTPStatusError(resp.StatusCode, requestURL))
	case resp.StatusCode != http.StatusOK:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to look up associated pull request").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, requestURL, string(body)))
	}

	var pulls []pullResponse
	if err := json.Unmarshal(body, &pulls); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse commit pulls response").
			WithCause(err)
	}
	if len(pulls) == 0 {
		return nil, nil
	}
	chosen := pulls[0]
	for _, pull := range pulls {
		if pull.State == string(types.PullRequestStateOpen) {
			chosen = pull
			break
		}
	}
	pr := &types.PullRequest{
		Number:  chosen.Number,
		State:   types.PullRequestState(chosen.State),
		BaseRef: chosen.Base.Ref,
	}
	for _, label := range chosen.Labels {
		pr.Labels = append(pr.Labels, label.Name)
	}
	return pr, nil
}
