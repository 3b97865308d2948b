package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/roach88/amble/internal/loader"
	"github.com/roach88/amble/internal/repl"
	"github.com/roach88/amble/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SaveDir  string
	Autosave int
	Dev      bool
	NoSaves  bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts, Autosave: -1}

	cmd := &cobra.Command{
		Use:   "run <bundle.cue>",
		Short: "Play a story bundle interactively",
		Long: `Load a story bundle and start an interactive session.

Saves land in a SQLite database next to the bundle unless AMBLE_SAVE_DIR
or --save-dir says otherwise.

Example:
  amble run stories/manor.cue
  amble run stories/manor.cue --dev --autosave 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.SaveDir, "save-dir", "", "directory for the save database")
	cmd.Flags().IntVar(&opts.Autosave, "autosave", -1, "autosave cadence in turns (0 disables)")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "enable the ':' debug commands")
	cmd.Flags().BoolVar(&opts.NoSaves, "no-saves", false, "run without a save database")

	return cmd
}

func runSession(ctx context.Context, opts *RunOptions, bundlePath string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}
	log := newLogger(opts.RootOptions, cfg)

	bundle, err := loader.Load(bundlePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load bundle", err)
	}
	bundleName := strings.TrimSuffix(filepath.Base(bundlePath), filepath.Ext(bundlePath))

	sessionOpts := []repl.Option{}
	if !opts.NoSaves {
		saveDir := cfg.SaveDir
		if opts.SaveDir != "" {
			saveDir = opts.SaveDir
		}
		st, err := store.Open(filepath.Join(saveDir, bundleName+".save.db"))
		if err != nil {
			return WrapExitError(ExitCommandError, "open save database", err)
		}
		defer st.Close()
		sessionOpts = append(sessionOpts, repl.WithStore(st))

		autosave := cfg.AutosaveTurns
		if opts.Autosave >= 0 {
			autosave = opts.Autosave
		}
		sessionOpts = append(sessionOpts, repl.WithAutosaveEvery(autosave))
	}
	if opts.Dev || cfg.Dev {
		sessionOpts = append(sessionOpts, repl.WithDevMode())
	}

	session := repl.NewSession(bundleName, bundle, log, sessionOpts...)
	sink := NewTerminalSink(os.Stdout)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rl, err := readline.New("> ")
	if err != nil {
		return WrapExitError(ExitCommandError, "initialize terminal", err)
	}
	defer rl.Close()

	fmt.Fprintf(os.Stdout, "%s\n\n", bundle.World.Name)
	session.Start()
	if err := session.View.Flush(sink); err != nil {
		return err
	}

	log.Info("session started",
		slog.String("bundle", bundleName),
		slog.Int("triggers", len(bundle.Triggers)))

	for !session.Done() {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout)
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// Ctrl-D or closed terminal ends the session cleanly.
			return nil
		}
		if err := session.Handle(ctx, line); err != nil {
			return err
		}
		if err := session.View.Flush(sink); err != nil {
			return err
		}
	}
	return nil
}
