package github_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/github"
)

func TestParsePullRequestURL(t *testing.T) {
	owner, repo, number, err := github.ParsePullRequestURL("https://github.com/opsforge-io/ticketd/pull/42")
	gt.NoError(t, err)
	gt.Value(t, owner).Equal("opsforge-io")
	gt.Value(t, repo).Equal("ticketd")
	gt.Value(t, number).Equal(42)
}

func TestParsePullRequestURLRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"issue url", "https://github.com/opsforge-io/ticketd/issues/42"},
		{"missing number", "https://github.com/opsforge-io/ticketd/pull/"},
		{"non numeric", "https://github.com/opsforge-io/ticketd/pull/abc"},
		{"wrong host", "https://gitlab.com/opsforge-io/ticketd/pull/42"},
		{"trailing path", "https://github.com/opsforge-io/ticketd/pull/42/files"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := github.ParsePullRequestURL(tc.url)
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
		})
	}
}
