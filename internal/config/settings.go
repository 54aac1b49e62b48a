package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/codex-k8s/prcomment/internal/runctx"
)

// hideClassifiers are the reasons GitHub accepts when minimizing a comment.
var hideClassifiers = []string{"SPAM", "ABUSE", "OFF_TOPIC", "OUTDATED", "DUPLICATE", "RESOLVED", "LOW_QUALITY"}

// Settings is the resolved, immutable configuration of one run.
type Settings struct {
	// Number is the pull request number; 0 means none could be resolved.
	Number int
	Owner  string
	Repo   string
	Header string
	// Body is the comment body, read from Path when one is given.
	Body            string
	Append          bool
	HideDetails     bool
	Recreate        bool
	HideAndRecreate bool
	HideClassify    string
	Delete          bool
	Hide            bool
	Token           string
	APIURL          string
	GraphQLURL      string
}

// Settings resolves inputs against the run context: pull request number,
// repository and body. Reading the body file is the only I/O.
func (in Inputs) Settings(rc runctx.Context) (Settings, error) {
	body, err := in.body()
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		Owner:           rc.Owner,
		Repo:            rc.Repo,
		Header:          in.Header,
		Body:            body,
		Append:          in.Append,
		HideDetails:     in.HideDetails,
		Recreate:        in.Recreate,
		HideAndRecreate: in.HideAndRecreate,
		HideClassify:    strings.ToUpper(strings.TrimSpace(in.HideClassify)),
		Delete:          in.Delete,
		Hide:            in.Hide,
		Token:           strings.TrimSpace(in.Token),
		APIURL:          rc.APIURL,
		GraphQLURL:      rc.GraphQLURL,
	}
	if v := strings.TrimSpace(in.Owner); v != "" {
		s.Owner = v
	}
	if v := strings.TrimSpace(in.Repo); v != "" {
		s.Repo = v
	}
	if s.HideClassify == "" {
		s.HideClassify = DefaultHideClassify
	}
	if n, ok := rc.ResolveNumber(in.Number); ok {
		s.Number = n
	}
	return s, nil
}

func (in Inputs) body() (string, error) {
	path := strings.TrimSpace(in.Path)
	if path == "" {
		return in.Message, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read comment body from %q: %w", path, err)
	}
	return string(data), nil
}

// Validate rejects conflicting flag combinations and a missing body.
func (s Settings) Validate() error {
	if s.Delete && s.Recreate {
		return errors.New("delete and recreate cannot be both set to true")
	}
	if s.Hide && s.HideAndRecreate {
		return errors.New("hide and hide_and_recreate cannot be both set to true")
	}
	if !s.Delete && !s.Hide && s.Body == "" {
		return errors.New("either message or path input is required")
	}
	if s.HideClassify != "" && !slices.Contains(hideClassifiers, s.HideClassify) {
		return fmt.Errorf("invalid hide_classify %q, expected one of %s", s.HideClassify, strings.Join(hideClassifiers, ", "))
	}
	return nil
}
