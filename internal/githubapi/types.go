// Package githubapi provides minimal GitHub API models for issue comments.
package githubapi

import "github.com/shurcooL/githubv4"

// IssueComment is a pull request conversation comment.
type IssueComment struct {
	// ID is the GitHub comment database ID.
	ID int64
	// NodeID is the GraphQL global node ID used by mutations.
	NodeID string
	// Author is the GitHub login of the comment author.
	Author string
	// Body is the raw markdown body of the comment.
	Body string
	// IsMinimized reports whether the comment is currently hidden.
	IsMinimized bool
}

// Endpoints overrides the public GitHub API locations, e.g. for GitHub Enterprise Server.
type Endpoints struct {
	// APIURL is the REST base URL (GITHUB_API_URL).
	APIURL string
	// GraphQLURL is the GraphQL endpoint (GITHUB_GRAPHQL_URL).
	GraphQLURL string
}

type pageInfo struct {
	EndCursor   githubv4.String
	HasNextPage githubv4.Boolean
}

type commentNode struct {
	ID          githubv4.ID
	DatabaseID  githubv4.Int `graphql:"databaseId"`
	IsMinimized githubv4.Boolean
	Body        githubv4.String
	Author      struct {
		Login githubv4.String
	}
}

type pullRequestCommentsQuery struct {
	Viewer struct {
		Login githubv4.String
	}
	Repository struct {
		PullRequest struct {
			Comments struct {
				Nodes    []commentNode
				PageInfo pageInfo
			} `graphql:"comments(first: 100, after: $after)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type updateIssueCommentMutation struct {
	UpdateIssueComment struct {
		IssueComment struct {
			ID githubv4.ID
		}
	} `graphql:"updateIssueComment(input: $input)"`
}

type deleteIssueCommentMutation struct {
	DeleteIssueComment struct {
		ClientMutationID *githubv4.String `graphql:"clientMutationId"`
	} `graphql:"deleteIssueComment(input: $input)"`
}

type minimizeCommentMutation struct {
	MinimizeComment struct {
		MinimizedComment struct {
			IsMinimized githubv4.Boolean
		}
	} `graphql:"minimizeComment(input: $input)"`
}
