package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/utils/safe"
	"github.com/shurcooL/githubv4"
)

const apiBaseURL = "https://api.github.com"

// maxDiffBytes caps the diff payload passed into review prompts
const maxDiffBytes = 256 * 1024

type client struct {
	gql        *githubv4.Client
	httpClient *http.Client
}

var _ interfaces.PullRequestReader = &client{}

// New creates a pull request reader using GitHub App authentication.
// privateKey can be a PEM string or a file path to a PEM file.
func New(appID, installationID int64, privateKey string) (interfaces.PullRequestReader, error) {
	var key []byte

	// Try reading as file path first
	// #nosec G304 -- path comes from CLI flag, not user input
	if data, err := os.ReadFile(privateKey); err == nil {
		key = data
	} else {
		// Treat as PEM string
		key = []byte(privateKey)
	}

	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	httpClient := &http.Client{Transport: tr}

	return &client{
		gql:        githubv4.NewClient(httpClient),
		httpClient: httpClient,
	}, nil
}

var prURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)

// ParsePullRequestURL splits a canonical PR URL into owner, repo and
// number. Anything else fails with ErrValidation.
func ParsePullRequestURL(prURL string) (owner, repo string, number int, err error) {
	matches := prURLPattern.FindStringSubmatch(prURL)
	if matches == nil {
		return "", "", 0, goerr.Wrap(types.ErrValidation, "pr_url must look like https://github.com/owner/repo/pull/123",
			goerr.V("pr_url", prURL))
	}

	number, err = strconv.Atoi(matches[3])
	if err != nil {
		return "", "", 0, goerr.Wrap(types.ErrValidation, "invalid pull request number", goerr.V("pr_url", prURL))
	}

	return matches[1], matches[2], number, nil
}

func (c *client) FetchPullRequest(ctx context.Context, prURL string) (*interfaces.PullRequest, error) {
	owner, repo, number, err := ParsePullRequestURL(prURL)
	if err != nil {
		return nil, err
	}

	var q pullRequestQuery
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number), // #nosec G115 -- PR numbers fit in int32
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return nil, goerr.Wrap(types.ErrCapability, "failed to query pull request",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number), goerr.V("cause", err))
	}

	pr := q.Repository.PullRequest

	diff, err := c.fetchDiff(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	var comments []interfaces.PullRequestComment
	for _, node := range pr.Comments.Nodes {
		comments = append(comments, interfaces.PullRequestComment{
			Author:    string(node.Author.Login),
			Body:      string(node.Body),
			CreatedAt: node.CreatedAt.Time,
		})
	}

	return &interfaces.PullRequest{
		URL:          prURL,
		Title:        string(pr.Title),
		Description:  string(pr.Body),
		Author:       string(pr.Author.Login),
		Diff:         diff,
		Comments:     comments,
		Additions:    int(pr.Additions),
		Deletions:    int(pr.Deletions),
		ChangedFiles: int(pr.ChangedFiles),
	}, nil
}

// fetchDiff uses the REST endpoint since the GraphQL API does not
// expose unified diffs.
func (c *client) fetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", apiBaseURL, owner, repo, number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build diff request", goerr.V("url", url))
	}
	req.Header.Set("Accept", "application/vnd.github.v3.diff")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(types.ErrCapability, "failed to fetch pull request diff",
			goerr.V("url", url), goerr.V("cause", err))
	}
	defer safe.Close(ctx, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", goerr.Wrap(types.ErrNotFound, "pull request not found",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("number", number))
	case resp.StatusCode != http.StatusOK:
		return "", goerr.Wrap(types.ErrCapability, "unexpected response fetching diff",
			goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDiffBytes))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read diff response", goerr.V("url", url))
	}

	return string(body), nil
}

type pullRequestQuery struct {
	Repository struct {
		PullRequest struct {
			Title  githubv4.String
			Body   githubv4.String
			Author struct {
				Login githubv4.String
			}
			Additions    githubv4.Int
			Deletions    githubv4.Int
			ChangedFiles githubv4.Int
			Comments     struct {
				Nodes []struct {
					Author struct {
						Login githubv4.String
					}
					Body      githubv4.String
					CreatedAt githubv4.DateTime
				}
			} `graphql:"comments(first: 100)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}
