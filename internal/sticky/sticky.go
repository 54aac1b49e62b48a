// Package sticky reconciles the single marked ("sticky") comment on a pull request:
// it creates, updates, hides, recreates or deletes it depending on settings.
package sticky

import (
	"context"
	"log/slog"

	"github.com/codex-k8s/prcomment/internal/config"
	"github.com/codex-k8s/prcomment/internal/githubapi"
)

// CommentClient is the subset of the GitHub API the runner needs.
type CommentClient interface {
	FindComment(ctx context.Context, number int, marker string) (*githubapi.IssueComment, error)
	CreateComment(ctx context.Context, number int, body string) (githubapi.IssueComment, error)
	UpdateComment(ctx context.Context, nodeID, body string) error
	DeleteComment(ctx context.Context, nodeID string) error
	MinimizeComment(ctx context.Context, nodeID, classifier string) error
}

// ClientFactory builds the API client. It is only invoked once a pull request is known.
type ClientFactory func(ctx context.Context) (CommentClient, error)

// Action names the terminal step a run took.
type Action string

const (
	ActionSkip            Action = "skip"
	ActionDelete          Action = "delete"
	ActionHide            Action = "hide"
	ActionCreate          Action = "create"
	ActionRecreate        Action = "recreate"
	ActionHideAndRecreate Action = "hide_and_recreate"
	ActionUpdate          Action = "update"
)

// Result describes what a run did.
type Result struct {
	Action Action
	// PreviousCommentID is the database ID of the marked comment found, 0 if none.
	PreviousCommentID int64
	// CreatedCommentID is the database ID of the comment created, 0 if none.
	CreatedCommentID int64
}

// Runner executes one reconciliation.
type Runner struct {
	logger    *slog.Logger
	newClient ClientFactory
}

// NewRunner constructs a Runner.
func NewRunner(logger *slog.Logger, newClient ClientFactory) *Runner {
	return &Runner{logger: logger, newClient: newClient}
}

// Run skips when there is no pull request, validates settings, looks up the
// previous marked comment and applies exactly one action, in priority order
// delete, hide, create, recreate, hide-and-recreate, update.
func (r *Runner) Run(ctx context.Context, s config.Settings) (Result, error) {
	if s.Number <= 0 {
		r.logger.Info("no pull request number given: skip step")
		return Result{Action: ActionSkip}, nil
	}
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	client, err := r.newClient(ctx)
	if err != nil {
		return Result{}, err
	}

	previous, err := client.FindComment(ctx, s.Number, Marker(s.Header))
	if err != nil {
		return Result{}, err
	}

	var res Result
	if previous != nil {
		res.PreviousCommentID = previous.ID
		r.logger.Info("found previous comment", "pr", s.Number, "id", previous.ID)
	} else {
		r.logger.Info("did not find previous comment", "pr", s.Number)
	}

	switch {
	case s.Delete:
		res.Action = ActionDelete
		if previous == nil {
			return res, nil
		}
		if err := client.DeleteComment(ctx, previous.NodeID); err != nil {
			return res, err
		}
		r.logger.Info("deleted comment", "id", previous.ID)
		return res, nil

	case s.Hide:
		res.Action = ActionHide
		if previous == nil {
			return res, nil
		}
		if err := client.MinimizeComment(ctx, previous.NodeID, s.HideClassify); err != nil {
			return res, err
		}
		r.logger.Info("hid comment", "id", previous.ID, "classifier", s.HideClassify)
		return res, nil

	case previous == nil:
		res.Action = ActionCreate
		err := r.create(ctx, client, s, "", &res)
		return res, err
	}

	previousBody := PreviousBody(previous, s.Append, s.HideDetails)

	switch {
	case s.Recreate:
		res.Action = ActionRecreate
		if err := client.DeleteComment(ctx, previous.NodeID); err != nil {
			return res, err
		}
		r.logger.Info("deleted comment", "id", previous.ID)
		err := r.create(ctx, client, s, previousBody, &res)
		return res, err

	case s.HideAndRecreate:
		res.Action = ActionHideAndRecreate
		if err := client.MinimizeComment(ctx, previous.NodeID, s.HideClassify); err != nil {
			return res, err
		}
		r.logger.Info("hid comment", "id", previous.ID, "classifier", s.HideClassify)
		err := r.create(ctx, client, s, "", &res)
		return res, err

	default:
		res.Action = ActionUpdate
		if s.Body == "" && previousBody == "" {
			r.logger.Warn("comment body cannot be blank")
			return res, nil
		}
		if err := client.UpdateComment(ctx, previous.NodeID, composeBody(s.Body, previousBody, s.Header)); err != nil {
			return res, err
		}
		r.logger.Info("updated comment", "id", previous.ID)
		return res, nil
	}
}

func (r *Runner) create(ctx context.Context, client CommentClient, s config.Settings, previousBody string, res *Result) error {
	if s.Body == "" && previousBody == "" {
		r.logger.Warn("comment body cannot be blank")
		return nil
	}
	created, err := client.CreateComment(ctx, s.Number, composeBody(s.Body, previousBody, s.Header))
	if err != nil {
		return err
	}
	res.CreatedCommentID = created.ID
	r.logger.Info("created comment", "pr", s.Number, "id", created.ID)
	return nil
}
