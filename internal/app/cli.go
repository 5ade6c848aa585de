package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	"champhelper/internal/config"
)

// Flags are the options every command accepts.
type Flags struct {
	ConfigPath string
	EnvPath    string
	Patch      string
	Verbose    bool
}

// Register adds the shared flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "TOML config path (defaults built in)")
	fs.StringVar(&f.EnvPath, "env", ".env", "dotenv file loaded before the environment is read")
	fs.StringVar(&f.Patch, "patch", "", "use this Data Dragon version instead of discovering one")
	fs.BoolVar(&f.Verbose, "v", false, "enable verbose logs")
}

// ErrInvalidConfig means validation reported at least one error.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig resolves configuration and writes every validation issue to w
// as "severity: path: message".
func LoadConfig(w io.Writer, configPath, envPath string) (config.Config, error) {
	cfg, err := config.Resolve(configPath, envPath)
	if err != nil {
		return cfg, err
	}
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return cfg, ErrInvalidConfig
	}
	return cfg, nil
}

// Start loads configuration, installs the metrics backend and builds the
// App. On failure it reports to stderr and returns the exit code to use;
// on success code is 0 and cleanup must be called before exit.
func Start(ctx context.Context, f Flags, stderr io.Writer, client *http.Client) (a *App, cleanup func(), code int) {
	cleanup = func() {}

	cfg, err := LoadConfig(stderr, f.ConfigPath, f.EnvPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return nil, cleanup, 2
	}
	if f.Patch != "" {
		cfg.Patch.Pin = f.Patch
	}

	cleanup, err = InitMetrics(ctx, cfg.Metrics)
	if err != nil {
		fmt.Fprintf(stderr, "init metrics: %v\n", err)
		return nil, cleanup, 2
	}

	a = New(cfg, client)
	if f.Verbose {
		a.Logf = log.New(stderr, "", log.LstdFlags).Printf
	}
	return a, cleanup, 0
}
