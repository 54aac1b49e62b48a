package cli

import (
	"os"
	"strings"

	envparse "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/codex-k8s/prcomment/internal/env"
)

// baseEnv defines root CLI defaults sourced from PRCOMMENT_* env vars.
type baseEnv struct {
	// ConfigPath is the YAML config path from PRCOMMENT_CONFIG.
	ConfigPath string `env:"PRCOMMENT_CONFIG"`
	// EnvFiles is a comma-separated dotenv list from PRCOMMENT_ENV_FILES.
	EnvFiles []string `env:"PRCOMMENT_ENV_FILES" envSeparator:","`
	// LogLevel is the logging level from PRCOMMENT_LOG_LEVEL.
	LogLevel string `env:"PRCOMMENT_LOG_LEVEL"`
}

// applyBaseEnv fills unset root flags from PRCOMMENT_* and exports dotenv files.
func applyBaseEnv(cmd *cobra.Command, opts *Options) error {
	envCfg := baseEnv{}
	if err := parseEnv(&envCfg); err != nil {
		return err
	}
	if !cmd.Flags().Changed("config") && envPresent("PRCOMMENT_CONFIG") {
		opts.ConfigPath = envCfg.ConfigPath
	}
	if !cmd.Flags().Changed("env-file") && envPresent("PRCOMMENT_ENV_FILES") {
		opts.EnvFiles = envCfg.EnvFiles
	}
	if !cmd.Flags().Changed("log-level") && envPresent("PRCOMMENT_LOG_LEVEL") {
		if err := cmd.Flags().Set("log-level", envCfg.LogLevel); err != nil {
			return err
		}
	}

	vars, err := env.LoadEnvFiles(".", opts.EnvFiles)
	if err != nil {
		return err
	}
	return env.Export(vars)
}

// parseEnv fills target from PRCOMMENT_* env vars via caarlos0/env.
func parseEnv(target interface{}) error {
	return envparse.Parse(target)
}

// envPresent reports whether a non-empty env var exists.
func envPresent(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}
