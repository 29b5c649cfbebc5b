// Package commands holds the cobra commands of the fetch CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/botsandus/retryfetch"
	"github.com/botsandus/retryfetch/internal/config"
	"github.com/botsandus/retryfetch/internal/logger"
)

// FetchOptions holds the flags of the fetch command
type FetchOptions struct {
	ConfigFile string
	MaxTries   int
	Timeout    time.Duration
	LogLevel   string
	Pretty     bool
}

// loggedError marks an error the command has already written to its log
type loggedError struct {
	error
}

func (e loggedError) Unwrap() error {
	return e.error
}

// Logged reports whether err was already logged by the fetch command, so
// callers printing errors don't report it twice
func Logged(err error) bool {
	var le loggedError

	return errors.As(err, &le)
}

// NewFetchCommand creates the root fetch command
func NewFetchCommand(version string) *cobra.Command {
	return newFetchCommand(version, &FetchOptions{})
}

func newFetchCommand(version string, opts *FetchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "GET a url, retrying failures with exponential backoff",
		Long: `Fetches a url with GET and writes the response body to stdout.

Transport errors and any status outside of 2xx are retried, waiting 1s before
the second attempt and doubling the wait before each one after that. When every
attempt fails, the error of the last attempt is reported.

Settings may also come from a YAML file (--config) or FETCH_* environment
variables; flags take precedence over both.`,
		Example: `  # Fetch with the default 3 attempts
  fetch https://example.com

  # Allow up to 5 attempts, giving up entirely after a minute
  fetch --max-tries 5 --timeout 1m https://example.com`,
		Version:      version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true, // see Logged
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), opts, overrides(cmd, opts), args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML configuration file")
	cmd.Flags().IntVarP(&opts.MaxTries, "max-tries", "n", retryfetch.DefaultMaxTries, "Total attempts, including the first (at least 2)")
	cmd.Flags().DurationVarP(&opts.Timeout, "timeout", "t", 0, "Give up entirely after this long (0 means never)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "Human readable logs instead of JSON")

	return cmd
}

// overrides returns the flags actually given on the command line, keyed for
// config.Load, so unset flags don't mask the environment or config file
func overrides(cmd *cobra.Command, opts *FetchOptions) map[string]any {
	o := map[string]any{}
	flags := cmd.Flags()

	if flags.Changed("max-tries") {
		o["maxtries"] = opts.MaxTries
	}

	if flags.Changed("timeout") {
		o["timeout"] = opts.Timeout.String()
	}

	if flags.Changed("log-level") {
		o["log.level"] = opts.LogLevel
	}

	if flags.Changed("pretty") {
		o["log.pretty"] = opts.Pretty
	}

	return o
}

func runFetch(ctx context.Context, opts *FetchOptions, o map[string]any, url string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.ConfigFile, o)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, stderr).With().Str("url", url).Logger()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ctx = retryfetch.WithMetadata(ctx)

	var failures int

	f := retryfetch.New()
	f.Notify = func(err error, wait time.Duration) {
		failures++

		log.Warn().
			Err(err).
			Int("attempt", failures).
			Int("max_tries", cfg.MaxTries).
			Dur("wait", wait).
			Msg("Fetch attempt failed, will retry")
	}

	log.Debug().Int("max_tries", cfg.MaxTries).Dur("timeout", cfg.Timeout).Msg("Fetching")

	body, err := f.FetchWithRetries(ctx, url, cfg.MaxTries)
	attempts, _ := retryfetch.NumberOfAttemptsFromContext(ctx)

	if err != nil {
		log.Error().Err(err).Int("attempts", attempts).Msg("Fetch failed")

		return loggedError{err}
	}

	duration, _ := retryfetch.SuccessfulRequestDurationFromContext(ctx)
	log.Info().Int("attempts", attempts).Dur("duration", duration).Int("bytes", len(body)).Msg("Fetch succeeded")

	_, err = io.WriteString(stdout, body)

	return err
}
