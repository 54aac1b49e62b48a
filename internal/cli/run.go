package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/prcomment/internal/config"
	"github.com/codex-k8s/prcomment/internal/githubapi"
	"github.com/codex-k8s/prcomment/internal/runctx"
	"github.com/codex-k8s/prcomment/internal/sticky"
)

// inputFlags mirrors config.Inputs; set flags override file and env values.
type inputFlags struct {
	number          string
	header          string
	message         string
	path            string
	appendBody      bool
	hideDetails     bool
	recreate        bool
	hideAndRecreate bool
	hideClassify    string
	deleteOld       bool
	hideOld         bool
	token           string
	owner           string
	repo            string
}

func addInputFlags(cmd *cobra.Command, f *inputFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.number, "number", "", "Pull request number, used when the event payload has none")
	fs.StringVar(&f.header, "header", "", "Header that identifies the sticky comment")
	fs.StringVar(&f.message, "message", "", "Comment body")
	fs.StringVar(&f.path, "path", "", "File whose content is used as the comment body")
	fs.BoolVar(&f.appendBody, "append", false, "Append the body to the previous comment")
	fs.BoolVar(&f.hideDetails, "hide-details", false, "Collapse open <details> of the previous body when appending")
	fs.BoolVar(&f.recreate, "recreate", false, "Delete the previous comment and create a new one")
	fs.BoolVar(&f.hideAndRecreate, "hide-and-recreate", false, "Hide the previous comment and create a new one")
	fs.StringVar(&f.hideClassify, "hide-classify", config.DefaultHideClassify, "Reason used when hiding (OUTDATED, RESOLVED, OFF_TOPIC, ...)")
	fs.BoolVar(&f.deleteOld, "delete", false, "Delete the previous comment")
	fs.BoolVar(&f.hideOld, "hide", false, "Hide the previous comment")
	fs.StringVar(&f.token, "token", "", "GitHub token (defaults to INPUT_GITHUB_TOKEN or GITHUB_TOKEN)")
	fs.StringVar(&f.owner, "owner", "", "Repository owner override")
	fs.StringVar(&f.repo, "repo", "", "Repository name override")
}

// apply copies explicitly set flags onto in.
func (f *inputFlags) apply(cmd *cobra.Command, in *config.Inputs) {
	changed := cmd.Flags().Changed
	strs := []struct {
		name string
		src  string
		dst  *string
	}{
		{"number", f.number, &in.Number},
		{"header", f.header, &in.Header},
		{"message", f.message, &in.Message},
		{"path", f.path, &in.Path},
		{"hide-classify", f.hideClassify, &in.HideClassify},
		{"token", f.token, &in.Token},
		{"owner", f.owner, &in.Owner},
		{"repo", f.repo, &in.Repo},
	}
	for _, s := range strs {
		if changed(s.name) {
			*s.dst = s.src
		}
	}
	bools := []struct {
		name string
		src  bool
		dst  *bool
	}{
		{"append", f.appendBody, &in.Append},
		{"hide-details", f.hideDetails, &in.HideDetails},
		{"recreate", f.recreate, &in.Recreate},
		{"hide-and-recreate", f.hideAndRecreate, &in.HideAndRecreate},
		{"delete", f.deleteOld, &in.Delete},
		{"hide", f.hideOld, &in.Hide},
	}
	for _, b := range bools {
		if changed(b.name) {
			*b.dst = b.src
		}
	}
}

// runComment loads inputs, reconciles the sticky comment and writes step outputs.
func runComment(cmd *cobra.Command, opts *Options, flags *inputFlags) (err error) {
	logger := LoggerFromContext(cmd.Context())
	rt := runctx.New(nil, cmd.OutOrStdout())
	defer func() { rt.Annotate(err) }()

	in, err := config.Load(config.LoadOptions{ConfigPath: opts.ConfigPath})
	if err != nil {
		return err
	}
	flags.apply(cmd, &in)

	rc, err := rt.Context()
	if err != nil {
		return err
	}
	settings, err := in.Settings(rc)
	if err != nil {
		return err
	}
	logger.Debug("settings resolved",
		"repo", settings.Owner+"/"+settings.Repo,
		"pr", settings.Number,
		"header", settings.Header,
		"event", rc.EventName,
	)

	runner := sticky.NewRunner(logger, func(ctx context.Context) (sticky.CommentClient, error) {
		return githubapi.NewClient(ctx, logger, settings.Token, settings.Owner, settings.Repo, githubapi.Endpoints{
			APIURL:     settings.APIURL,
			GraphQLURL: settings.GraphQLURL,
		})
	})
	res, err := runner.Run(cmd.Context(), settings)
	if err != nil {
		return err
	}

	return rt.SetOutputs(map[string]string{
		"previous_comment_id": formatID(res.PreviousCommentID),
		"created_comment_id":  formatID(res.CreatedCommentID),
	})
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
