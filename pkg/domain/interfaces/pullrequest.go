package interfaces

import (
	"context"
	"time"
)

// PullRequest is the review-relevant view of one source-control PR
type PullRequest struct {
	URL         string
	Title       string
	Description string
	Author      string
	Diff        string
	Comments    []PullRequestComment

	Additions    int
	Deletions    int
	ChangedFiles int
}

// PullRequestComment is one discussion comment on a PR
type PullRequestComment struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// PullRequestReader fetches PR data from a URL matching the fixed
// owner/repo/number pattern. A missing PR is ErrNotFound; any other
// upstream failure is ErrCapability.
type PullRequestReader interface {
	FetchPullRequest(ctx context.Context, prURL string) (*PullRequest, error)
}
