package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/amble/internal/loader"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <bundle.cue>",
		Short: "Check a story bundle without running it",
		Long: `Load and fully resolve a bundle, reporting every problem found:
CUE errors, dangling symbol references, unknown vocabulary, and bad
schedule parameters. Exits 1 when the bundle has problems.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateBundle(rootOpts, args[0])
		},
	}
}

type validateResult struct {
	Bundle   string `json:"bundle"`
	Rooms    int    `json:"rooms"`
	Items    int    `json:"items"`
	Npcs     int    `json:"npcs"`
	Goals    int    `json:"goals"`
	Triggers int    `json:"triggers"`
}

func (r validateResult) String() string {
	return fmt.Sprintf("%s: ok (%d rooms, %d items, %d npcs, %d goals, %d triggers)",
		r.Bundle, r.Rooms, r.Items, r.Npcs, r.Goals, r.Triggers)
}

func validateBundle(opts *RootOptions, path string) error {
	out := &OutputFormatter{Format: opts.Format, Writer: os.Stdout}

	bundle, err := loader.Load(path)
	if err != nil {
		var list *loader.ErrorList
		if errors.As(err, &list) {
			_ = out.Failure(list.Error())
			return NewExitError(ExitFailure, "bundle has problems")
		}
		return WrapExitError(ExitCommandError, "load bundle", err)
	}

	return out.Success(validateResult{
		Bundle:   path,
		Rooms:    len(bundle.World.Rooms),
		Items:    len(bundle.World.Items),
		Npcs:     len(bundle.World.Npcs),
		Goals:    len(bundle.World.Goals),
		Triggers: len(bundle.Triggers),
	})
}
