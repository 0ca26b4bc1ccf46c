// Package cli implements the artisign command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/meigma/artisign"
	"github.com/meigma/artisign/cmd/artisign/cli/config"
)

// Build information set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "artisign",
	Short: "Sign release artifacts through a remote signing service",
	Long: `Artisign uploads release artifacts to an HTTP signing service and writes
the signed results to an output directory.

Artifacts that are unchanged since a previous build are not sent again:
their signed counterparts are copied from that build instead.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return initConfig() },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/artisign/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format (auto, text, json)")
	rootCmd.Version = version
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
	}
	return err
}

// initConfig reads the config file and environment into the global viper.
// A missing default config file is not an error; a missing --config file is.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if dir, err := config.Dir(); err == nil {
			viper.AddConfigPath(dir)
		}
	}

	viper.SetEnvPrefix("ARTISIGN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// newLogger creates the logger handed to the client.
func newLogger(w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	format := logFormat
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q (expected auto, text or json)", logFormat)
	}
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// formatError converts artisign errors to user-friendly messages.
func formatError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, artisign.ErrInconsistent):
		return fmt.Sprintf("Error: content inconsistency: %v", err)
	case errors.Is(err, artisign.ErrUnauthorized):
		return "Error: signing service refused the credentials (check signing.token)"
	case errors.Is(err, artisign.ErrSigningFailed):
		return fmt.Sprintf("Error: signing failed: %v", err)
	case errors.Is(err, artisign.ErrNoEndpoint):
		return "Error: no signing endpoint configured (set signing.url or --url, or use --skip-signing)"
	case errors.Is(err, artisign.ErrAmbiguousSuffix):
		return fmt.Sprintf("Error: invalid suffix configuration: %v", err)
	case errors.Is(err, artisign.ErrUnknownAlgorithm):
		return fmt.Sprintf("Error: %v (expected sha256, sha512 or blake3)", err)
	case errors.Is(err, context.Canceled):
		return "Error: operation canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
