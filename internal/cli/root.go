// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"admin-console/internal/app"
	"admin-console/internal/config"
	"admin-console/internal/pkg/response"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

type rootOptions struct {
	envFile string
	output  string
	debug   bool
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if status := response.StatusOf(err); status >= 400 && status < 500 {
			return 2
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "console",
		Short:         "Admin console for the dating app",
		Long:          "Sign in to the admin API and manage its paginated resources from the terminal, or serve the console to a browser front end.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutputFormat(opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load when present")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Verbose development logging")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newScreensCmd(opts),
		newListCmd(opts),
		newMutateCmd(opts),
		newJournalCmd(opts),
	)
	return rootCmd
}

func (o *rootOptions) loadConfig() (config.AppConfig, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return config.AppConfig{}, err
	}
	if o.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func newLogger(cfg config.AppConfig, level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}

// openConsole builds a console that reports to the command's stderr.
func (o *rootOptions) openConsole(cmd *cobra.Command) (*app.Console, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg, zapcore.ErrorLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	printer := newNoticePrinter(cmd.ErrOrStderr())
	console, err := app.NewConsole(cmd.Context(), cfg, printer.surface, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return console, func() {
		console.Close()
		_ = logger.Sync()
	}, nil
}

// ensureProfile loads the principal, which only lives in memory, so that
// permission checks can pass.
func ensureProfile(ctx context.Context, console *app.Console) error {
	if !console.Gate.CheckAuth(ctx) {
		return errNotSignedIn
	}
	if console.Gate.Principal() != nil {
		return nil
	}
	_, err := console.Auth.RefreshProfile(ctx)
	return err
}

var errNotSignedIn = errors.New("not signed in: run `console login` first")
