// Package githubapi provides the GitHub client used to manage sticky pull request comments.
// Listing and mutations go through GraphQL; comment creation goes through REST.
package githubapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://api.github.com"

// Client talks to one GitHub repository.
type Client struct {
	logger  *slog.Logger
	rest    *github.Client
	graphql *githubv4.Client
	owner   string
	name    string
}

// NewClient builds a client authenticated with token for the owner/name repository.
func NewClient(ctx context.Context, logger *slog.Logger, token, owner, name string, endpoints Endpoints) (*Client, error) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q, expected owner/repo", owner+"/"+name)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("github token is empty")
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	rest := github.NewClient(httpClient)
	apiURL := strings.TrimRight(strings.TrimSpace(endpoints.APIURL), "/")
	if apiURL != "" && apiURL != defaultAPIURL {
		var err error
		rest, err = rest.WithEnterpriseURLs(apiURL+"/", apiURL+"/")
		if err != nil {
			return nil, fmt.Errorf("configure github api url %q: %w", apiURL, err)
		}
	}

	graphql := githubv4.NewClient(httpClient)
	if gqlURL := strings.TrimSpace(endpoints.GraphQLURL); gqlURL != "" {
		graphql = githubv4.NewEnterpriseClient(gqlURL, httpClient)
	}

	return &Client{
		logger:  logger,
		rest:    rest,
		graphql: graphql,
		owner:   owner,
		name:    name,
	}, nil
}

// Repository returns the owner/name slug the client is bound to.
func (c *Client) Repository() string {
	return c.owner + "/" + c.name
}

// FindComment returns the first visible comment on pull request number that was
// written by the authenticated viewer and contains marker. It returns nil when
// no such comment exists.
func (c *Client) FindComment(ctx context.Context, number int, marker string) (*IssueComment, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pr number must be positive")
	}

	vars := map[string]any{
		"owner":  githubv4.String(c.owner),
		"name":   githubv4.String(c.name),
		"number": githubv4.Int(number),
		"after":  (*githubv4.String)(nil),
	}
	for {
		var q pullRequestCommentsQuery
		if err := c.graphql.Query(ctx, &q, vars); err != nil {
			return nil, fmt.Errorf("list comments of %s#%d: %w", c.Repository(), number, err)
		}
		viewer := strings.TrimSuffix(string(q.Viewer.Login), "[bot]")
		comments := q.Repository.PullRequest.Comments
		c.debug("listed pull request comments", "pr", number, "count", len(comments.Nodes), "viewer", viewer)

		for _, node := range comments.Nodes {
			if string(node.Author.Login) != viewer || bool(node.IsMinimized) {
				continue
			}
			if !strings.Contains(string(node.Body), marker) {
				continue
			}
			return &IssueComment{
				ID:          int64(node.DatabaseID),
				NodeID:      fmt.Sprint(node.ID),
				Author:      string(node.Author.Login),
				Body:        string(node.Body),
				IsMinimized: bool(node.IsMinimized),
			}, nil
		}

		if !comments.PageInfo.HasNextPage || comments.PageInfo.EndCursor == "" {
			return nil, nil
		}
		vars["after"] = githubv4.NewString(comments.PageInfo.EndCursor)
	}
}

// CreateComment posts a new comment on pull request number.
func (c *Client) CreateComment(ctx context.Context, number int, body string) (IssueComment, error) {
	created, _, err := c.rest.Issues.CreateComment(ctx, c.owner, c.name, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return IssueComment{}, fmt.Errorf("create comment on %s#%d: %w", c.Repository(), number, err)
	}
	c.debug("comment created", "pr", number, "id", created.GetID())
	return IssueComment{
		ID:     created.GetID(),
		NodeID: created.GetNodeID(),
		Author: created.GetUser().GetLogin(),
		Body:   created.GetBody(),
	}, nil
}

// UpdateComment replaces the body of the comment identified by nodeID.
func (c *Client) UpdateComment(ctx context.Context, nodeID, body string) error {
	var m updateIssueCommentMutation
	input := githubv4.UpdateIssueCommentInput{
		ID:   githubv4.ID(nodeID),
		Body: githubv4.String(body),
	}
	if err := c.graphql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("update comment %s: %w", nodeID, err)
	}
	return nil
}

// DeleteComment removes the comment identified by nodeID.
func (c *Client) DeleteComment(ctx context.Context, nodeID string) error {
	var m deleteIssueCommentMutation
	input := githubv4.DeleteIssueCommentInput{
		ID: githubv4.ID(nodeID),
	}
	if err := c.graphql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("delete comment %s: %w", nodeID, err)
	}
	return nil
}

// MinimizeComment hides the comment identified by nodeID with the given classifier
// (e.g. OUTDATED, RESOLVED).
func (c *Client) MinimizeComment(ctx context.Context, nodeID, classifier string) error {
	var m minimizeCommentMutation
	input := githubv4.MinimizeCommentInput{
		SubjectID:  githubv4.ID(nodeID),
		Classifier: githubv4.ReportedContentClassifiers(classifier),
	}
	if err := c.graphql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("minimize comment %s: %w", nodeID, err)
	}
	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, append(args, "repo", c.Repository())...)
	}
}
