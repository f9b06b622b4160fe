package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirefeed/internal/app"
	"github.com/vovakirdan/wirefeed/internal/config"
	wflog "github.com/vovakirdan/wirefeed/internal/log"
)

// Execute runs the wirefeed command line.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// session holds state shared by the subcommands of one invocation.
type session struct {
	configPath string
	overrides  config.Config

	cfg       config.Config
	log       *zerolog.Logger
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	s := &session{}

	cmd := &cobra.Command{
		Use:          "wirefeed",
		Short:        "Channel based messaging with live delivery",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			s.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&s.configPath, "config", "", "path to config file")
	flags.StringVar(&s.overrides.DatabasePath, "db", "", "path to the SQLite database")
	flags.StringVar(&s.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&s.overrides.LogFile, "log-file", "", "log file path")

	cmd.AddCommand(
		newRegisterCmd(s),
		newLoginCmd(s),
		newChannelsCmd(s),
		newPostCmd(s),
		newHistoryCmd(s),
		newFeedCmd(s),
		newTUICmd(s),
	)
	return cmd
}

func (s *session) init(cmd *cobra.Command) error {
	bootLog := wflog.New("warn", cmd.ErrOrStderr())

	cfg, _, err := config.Load(bootLog, s.configPath)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(s.overrides)
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg

	if cfg.LogFile == "" {
		s.log = wflog.New(cfg.LogLevel, cmd.ErrOrStderr())
		return nil
	}
	logger, closer, err := wflog.NewFile(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	s.log, s.logCloser = logger, closer
	return nil
}

func nopLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func (s *session) close() {
	if s.logCloser != nil {
		_ = s.logCloser.Close()
		s.logCloser = nil
	}
}

func (s *session) openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, &s.cfg, s.log)
}

// withApp opens the application for the duration of fn.
func (s *session) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := s.openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close: %v\n", closeErr)
		}
	}()

	return fn(ctx, a)
}
