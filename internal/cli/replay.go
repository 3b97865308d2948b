package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/amble/internal/loader"
	"github.com/roach88/amble/internal/repl"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Verify bool
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <bundle.cue> <commands.txt>",
		Short: "Run a command script non-interactively",
		Long: `Feed a file of player commands (one per line, "#" comments allowed)
through a fresh session and print the tagged transcript.

With --verify the script runs twice from scratch and the transcripts are
compared; any difference means the bundle has a source of nondeterminism
and the command exits 1.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayScript(cmd.Context(), opts, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "run twice and compare transcripts")
	return cmd
}

func replayScript(ctx context.Context, opts *ReplayOptions, bundlePath, scriptPath string) error {
	commands, err := readScript(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read script", err)
	}

	first, err := runScript(ctx, bundlePath, commands)
	if err != nil {
		return err
	}

	if opts.Verify {
		second, err := runScript(ctx, bundlePath, commands)
		if err != nil {
			return err
		}
		if !bytes.Equal(first, second) {
			fmt.Fprintln(os.Stderr, "transcripts differ between runs")
			return NewExitError(ExitFailure, "replay is not deterministic")
		}
		fmt.Fprintf(os.Stdout, "deterministic: %d commands, %d bytes of transcript\n",
			len(commands), len(first))
		return nil
	}

	_, err = os.Stdout.Write(first)
	return err
}

// runScript plays the commands against a fresh session and returns the
// plain transcript.
func runScript(ctx context.Context, bundlePath string, commands []string) ([]byte, error) {
	bundle, err := loader.Load(bundlePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load bundle", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := repl.NewSession("replay", bundle, log, repl.WithDevMode())

	var buf bytes.Buffer
	sink := NewPlainSink(&buf)

	session.Start()
	if err := session.View.Flush(sink); err != nil {
		return nil, err
	}
	for _, cmd := range commands {
		if session.Done() {
			break
		}
		if err := session.Handle(ctx, cmd); err != nil {
			return nil, err
		}
		if err := session.View.Flush(sink); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func readScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var commands []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	return commands, scanner.Err()
}
