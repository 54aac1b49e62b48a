// Package runctx reads the GitHub Actions run context: repository, event payload and API endpoints.
package runctx

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"
)

// Context is the subset of the Actions run context prcomment relies on.
type Context struct {
	// Owner is the repository owner from GITHUB_REPOSITORY.
	Owner string
	// Repo is the repository name from GITHUB_REPOSITORY.
	Repo string
	// APIURL is the REST endpoint from GITHUB_API_URL.
	APIURL string
	// GraphQLURL is the GraphQL endpoint from GITHUB_GRAPHQL_URL.
	GraphQLURL string
	// EventName is the triggering event from GITHUB_EVENT_NAME.
	EventName string
	// PullRequestNumber is pull_request.number from the event payload, 0 when absent.
	PullRequestNumber int
	// InActions reports whether the process runs inside a GitHub Actions job.
	InActions bool
}

// Runtime wraps the go-githubactions helper with an injectable environment.
type Runtime struct {
	action *githubactions.Action
	getenv githubactions.GetenvFunc
}

// New builds a Runtime reading variables through getenv and writing workflow
// commands to w. Nil values fall back to the process environment and stdout.
func New(getenv githubactions.GetenvFunc, w io.Writer) *Runtime {
	if getenv == nil {
		getenv = os.Getenv
	}
	if w == nil {
		w = os.Stdout
	}
	return &Runtime{
		action: githubactions.New(githubactions.WithGetenv(getenv), githubactions.WithWriter(w)),
		getenv: getenv,
	}
}

// Context loads the run context. A missing event payload is not an error; an
// unreadable one is.
func (r *Runtime) Context() (Context, error) {
	ghctx, err := r.action.Context()
	if err != nil {
		return Context{}, fmt.Errorf("load github actions context: %w", err)
	}

	out := Context{
		APIURL:            strings.TrimSpace(ghctx.APIURL),
		GraphQLURL:        strings.TrimSpace(ghctx.GraphqlURL),
		EventName:         strings.TrimSpace(ghctx.EventName),
		PullRequestNumber: pullRequestNumber(ghctx.Event),
		InActions:         strings.EqualFold(strings.TrimSpace(r.getenv("GITHUB_ACTIONS")), "true"),
	}
	out.Owner, out.Repo = SplitRepository(ghctx.Repository)
	if out.Owner == "" {
		out.Owner = strings.TrimSpace(ghctx.RepositoryOwner)
	}
	return out, nil
}

// Annotate reports err as an ::error:: workflow command when running inside Actions.
func (r *Runtime) Annotate(err error) {
	if err == nil || !strings.EqualFold(strings.TrimSpace(r.getenv("GITHUB_ACTIONS")), "true") {
		return
	}
	r.action.Errorf("%s", err.Error())
}

// SetOutputs writes non-empty values as step outputs in key order. It is a
// no-op when GITHUB_OUTPUT is unset.
func (r *Runtime) SetOutputs(values map[string]string) (err error) {
	if strings.TrimSpace(r.getenv("GITHUB_OUTPUT")) == "" {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k, v := range values {
		if strings.TrimSpace(k) == "" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	// go-githubactions panics when the output file cannot be written.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("write step outputs: %v", p)
		}
	}()
	for _, k := range keys {
		r.action.SetOutput(k, values[k])
	}
	return nil
}

// ResolveNumber returns the pull request number to act on: the event payload
// wins, then input parsed as an integer. ok is false when neither yields a
// number of at least 1.
func (c Context) ResolveNumber(input string) (number int, ok bool) {
	if c.PullRequestNumber > 0 {
		return c.PullRequestNumber, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// SplitRepository splits an owner/name slug. Malformed values yield empty strings.
func SplitRepository(slug string) (owner, name string) {
	owner, name, found := strings.Cut(strings.TrimSpace(slug), "/")
	owner, name = strings.TrimSpace(owner), strings.TrimSpace(name)
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", ""
	}
	return owner, name
}

func pullRequestNumber(event map[string]any) int {
	pr, ok := event["pull_request"].(map[string]any)
	if !ok {
		return 0
	}
	switch n := pr["number"].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
