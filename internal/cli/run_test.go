package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/prcomment/internal/logging"
)

// fakeGitHub records every API request and answers with an empty comment list.
type fakeGitHub struct {
	mu       sync.Mutex
	requests []string
	created  []string
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/graphql" {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"viewer": map[string]any{"login": "github-actions[bot]"},
			"repository": map[string]any{"pullRequest": map[string]any{"comments": map[string]any{
				"nodes":    []any{},
				"pageInfo": map[string]any{"endCursor": "", "hasNextPage": false},
			}}},
		}})
		return
	}
	if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/repos/owner/repo/issues/7/comments") {
		var body struct {
			Body string `json:"body"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body.Body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 555, "node_id": "IC_555", "body": body.Body})
		return
	}
	http.NotFound(w, r)
}

func setupEnv(t *testing.T) (*fakeGitHub, string) {
	t.Helper()
	fake := &fakeGitHub{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	output := filepath.Join(t.TempDir(), "github_output")
	for k, v := range map[string]string{
		"GITHUB_ACTIONS":      "",
		"GITHUB_REPOSITORY":   "owner/repo",
		"GITHUB_EVENT_PATH":   "",
		"GITHUB_API_URL":      srv.URL,
		"GITHUB_GRAPHQL_URL":  srv.URL + "/graphql",
		"GITHUB_OUTPUT":       output,
		"GITHUB_TOKEN":        "",
		"PRCOMMENT_CONFIG":    "",
		"PRCOMMENT_ENV_FILES": "",
		"PRCOMMENT_LOG_LEVEL": "error",
		"INPUT_NUMBER":        "",
		"INPUT_HEADER":        "",
		"INPUT_MESSAGE":       "",
		"INPUT_PATH":          "",
		"INPUT_DELETE":        "",
		"INPUT_HIDE":          "",
		"INPUT_RECREATE":      "",
		"INPUT_GITHUB_TOKEN":  "",
	} {
		t.Setenv(k, v)
	}
	return fake, output
}

func TestExecuteCreatesComment(t *testing.T) {
	fake, output := setupEnv(t)

	err := Execute([]string{"--number", "7", "--header", "cov", "--message", "hello", "--token", "secret"}, logging.Discard())
	require.NoError(t, err)

	require.Equal(t, []string{"hello\n<!-- Sticky Pull Request Commentcov -->"}, fake.created)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "created_comment_id<<")
	assert.Contains(t, string(data), "\n555\n")
	assert.NotContains(t, string(data), "previous_comment_id")
}

func TestExecuteReadsActionInputs(t *testing.T) {
	fake, _ := setupEnv(t)
	body := filepath.Join(t.TempDir(), "body.md")
	require.NoError(t, os.WriteFile(body, []byte("from file"), 0o600))
	t.Setenv("INPUT_NUMBER", "7")
	t.Setenv("INPUT_PATH", body)
	t.Setenv("GITHUB_TOKEN", "secret")

	require.NoError(t, Execute(nil, logging.Discard()))
	require.Equal(t, []string{"from file\n<!-- Sticky Pull Request Comment -->"}, fake.created)
}

func TestExecuteEnvFile(t *testing.T) {
	fake, _ := setupEnv(t)
	t.Setenv("PRCOMMENT_TEST_MESSAGE", "")
	require.NoError(t, os.Unsetenv("PRCOMMENT_TEST_MESSAGE"))
	dotenv := filepath.Join(t.TempDir(), "local.env")
	require.NoError(t, os.WriteFile(dotenv, []byte("PRCOMMENT_TEST_MESSAGE=from dotenv\n"), 0o600))
	cfg := filepath.Join(t.TempDir(), "prcomment.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`message: {{ envOr "PRCOMMENT_TEST_MESSAGE" "none" | printf "%q" }}`+"\n"), 0o600))

	err := Execute([]string{"--env-file", dotenv, "--config", cfg, "--number", "7", "--token", "secret"}, logging.Discard())
	require.NoError(t, err)
	require.Equal(t, []string{"from dotenv\n<!-- Sticky Pull Request Comment -->"}, fake.created)
}

func TestExecuteConflictingFlagsFailBeforeAPICalls(t *testing.T) {
	fake, _ := setupEnv(t)

	err := Execute([]string{"--number", "7", "--delete", "--recreate", "--token", "secret"}, logging.Discard())
	require.EqualError(t, err, "delete and recreate cannot be both set to true")

	err = Execute([]string{"--number", "7", "--message", "x", "--hide", "--hide-and-recreate", "--token", "secret"}, logging.Discard())
	require.EqualError(t, err, "hide and hide_and_recreate cannot be both set to true")

	err = Execute([]string{"--number", "7", "--token", "secret"}, logging.Discard())
	require.EqualError(t, err, "either message or path input is required")

	assert.Empty(t, fake.requests)
}

func TestExecuteSkipsWithoutPullRequest(t *testing.T) {
	fake, output := setupEnv(t)

	require.NoError(t, Execute([]string{"--message", "hello"}, logging.Discard()))
	require.NoError(t, Execute(nil, logging.Discard()), "missing body is not checked without a pull request")
	assert.Empty(t, fake.requests)
	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteMissingToken(t *testing.T) {
	fake, _ := setupEnv(t)

	err := Execute([]string{"--number", "7", "--message", "hello"}, logging.Discard())
	require.EqualError(t, err, "github token is empty")
	assert.Empty(t, fake.requests)
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer
	cmd := newRootCommand(&Options{}, logging.Discard())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}
