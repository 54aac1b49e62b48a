// Package config loads prcomment inputs from an optional YAML file and the
// GitHub Actions INPUT_* environment, and turns them into run Settings.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"text/template"
	"time"

	envparse "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/prcomment/internal/env"
)

// DefaultHideClassify is the minimize reason used when none is configured.
const DefaultHideClassify = "OUTDATED"

// Inputs holds raw, unresolved inputs. Field names follow the action inputs.
type Inputs struct {
	// EnvFiles lists dotenv files loaded before the config file is rendered.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// Number is the pull request number used when the event payload has none.
	Number string `yaml:"number,omitempty" env:"INPUT_NUMBER"`
	// Header distinguishes several sticky comments on the same pull request.
	Header string `yaml:"header,omitempty" env:"INPUT_HEADER"`
	// Message is the comment body.
	Message string `yaml:"message,omitempty" env:"INPUT_MESSAGE"`
	// Path is a file whose content is used as the body instead of Message.
	Path string `yaml:"path,omitempty" env:"INPUT_PATH"`
	// Append adds the body to the previous one instead of replacing it.
	Append bool `yaml:"append,omitempty" env:"INPUT_APPEND"`
	// HideDetails collapses open <details> blocks of the previous body when appending.
	HideDetails bool `yaml:"hideDetails,omitempty" env:"INPUT_HIDE_DETAILS"`
	// Recreate deletes the previous comment and posts a new one.
	Recreate bool `yaml:"recreate,omitempty" env:"INPUT_RECREATE"`
	// HideAndRecreate minimizes the previous comment and posts a new one.
	HideAndRecreate bool `yaml:"hideAndRecreate,omitempty" env:"INPUT_HIDE_AND_RECREATE"`
	// HideClassify is the minimize reason (OUTDATED, RESOLVED, ...).
	HideClassify string `yaml:"hideClassify,omitempty" env:"INPUT_HIDE_CLASSIFY"`
	// Delete removes the previous comment.
	Delete bool `yaml:"delete,omitempty" env:"INPUT_DELETE"`
	// Hide minimizes the previous comment.
	Hide bool `yaml:"hide,omitempty" env:"INPUT_HIDE"`
	// Token is the GitHub token.
	Token string `yaml:"-" env:"INPUT_GITHUB_TOKEN"`
	// Owner overrides the repository owner.
	Owner string `yaml:"owner,omitempty" env:"INPUT_OWNER"`
	// Repo overrides the repository name.
	Repo string `yaml:"repo,omitempty" env:"INPUT_REPO"`
}

// LoadOptions controls where inputs are read from.
type LoadOptions struct {
	// ConfigPath is an optional YAML file; empty skips the file layer.
	ConfigPath string
	// Environ is the environment to read; nil uses the process environment.
	Environ env.Vars
}

// TemplateContext is the data exposed to the config file template.
type TemplateContext struct {
	// Env merges the environment with the config's envFiles.
	Env env.Vars
	// Now is the timestamp captured for template rendering.
	Now time.Time
}

// Defaults returns inputs with built-in defaults applied.
func Defaults() Inputs {
	return Inputs{HideClassify: DefaultHideClassify}
}

// Load reads inputs: defaults, then the config file, then non-empty INPUT_* variables.
func Load(opts LoadOptions) (Inputs, error) {
	environ := opts.Environ
	if environ == nil {
		environ = env.FromOS()
	}

	in := Defaults()
	if strings.TrimSpace(opts.ConfigPath) != "" {
		fileEnv, err := loadFile(opts.ConfigPath, environ, &in)
		if err != nil {
			return Inputs{}, err
		}
		environ = env.Merge(fileEnv, environ)
	}

	nonEmpty := make(map[string]string, len(environ))
	for k, v := range environ {
		if strings.TrimSpace(v) != "" {
			nonEmpty[k] = v
		}
	}
	if err := envparse.ParseWithOptions(&in, envparse.Options{
		Environment: nonEmpty,
		FuncMap:     map[reflect.Type]envparse.ParserFunc{reflect.TypeOf(false): parseInputBool},
	}); err != nil {
		return Inputs{}, fmt.Errorf("parse action inputs: %w", err)
	}
	if strings.TrimSpace(in.Token) == "" {
		in.Token = nonEmpty["GITHUB_TOKEN"]
	}
	return in, nil
}

// parseInputBool accepts the YAML 1.2 core schema booleans that Actions
// passes for boolean inputs: true, True, TRUE, false, False, FALSE.
func parseInputBool(value string) (interface{}, error) {
	switch strings.TrimSpace(value) {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	}
	return nil, fmt.Errorf("%q is not a boolean, want true or false", value)
}

// rawHeader is a minimal struct used to extract envFiles before templating.
type rawHeader struct {
	EnvFiles []string `yaml:"envFiles"`
}

// loadFile renders and decodes the YAML config into in. It returns the
// variables read from the config's envFiles.
func loadFile(path string, environ env.Vars, in *Inputs) (env.Vars, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	rawBytes, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", absPath, err)
	}

	var header rawHeader
	if err := yaml.Unmarshal(rawBytes, &header); err != nil {
		return nil, fmt.Errorf("parse top-level config fields: %w", err)
	}
	fileEnv, err := env.LoadEnvFiles(filepath.Dir(absPath), header.EnvFiles)
	if err != nil {
		return nil, err
	}

	ctx := TemplateContext{
		Env: env.Merge(fileEnv, environ),
		Now: time.Now().UTC(),
	}
	rendered, err := RenderTemplate(filepath.Base(absPath), rawBytes, ctx)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(rendered, in); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", absPath, err)
	}
	return fileEnv, nil
}

// RenderTemplate renders text content with the config template helpers.
func RenderTemplate(name string, raw []byte, ctx TemplateContext) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(buildFuncMap(ctx)).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// buildFuncMap constructs the template functions available in the config file.
func buildFuncMap(ctx TemplateContext) template.FuncMap {
	return template.FuncMap{
		"default":    funcDef,
		"toLower":    strings.ToLower,
		"envOr":      funcEnvOr(ctx.Env),
		"now":        func() time.Time { return ctx.Now },
		"trimPrefix": funcTrimPrefix,
	}
}

// funcDef returns def when value is empty or whitespace, otherwise value.
func funcDef(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// funcEnvOr returns a function that looks up a key in envMap and falls back to def.
func funcEnvOr(envMap env.Vars) func(key, def string) string {
	return func(key, def string) string {
		if v, ok := envMap[key]; ok && v != "" {
			return v
		}
		return def
	}
}

// funcTrimPrefix removes the prefix from value when present.
func funcTrimPrefix(value, prefix string) string {
	return strings.TrimPrefix(value, prefix)
}
