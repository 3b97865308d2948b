package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/amble/internal/store"
)

// SavesOptions holds flags for the saves command.
type SavesOptions struct {
	*RootOptions
	Database string
	Delete   string
}

// NewSavesCommand creates the saves command.
func NewSavesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SavesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "saves --db <path>",
		Short: "List or delete save slots",
		Example: `  amble saves --db manor.save.db
  amble saves --db manor.save.db --delete autosave`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return manageSaves(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the save database (required)")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "delete the named slot instead of listing")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

type savesListing struct {
	Slots []store.SlotInfo `json:"slots"`
}

func (l savesListing) String() string {
	if len(l.Slots) == 0 {
		return "no saves"
	}
	var b strings.Builder
	for i, s := range l.Slots {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-16s %-16s turn %-5d %s",
			s.Slot, s.BundleName, s.TurnCount, s.SavedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func manageSaves(opts *SavesOptions) error {
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "save database", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open save database", err)
	}
	defer st.Close()

	out := &OutputFormatter{Format: opts.Format, Writer: os.Stdout}
	ctx := context.Background()

	if opts.Delete != "" {
		if err := st.Delete(ctx, opts.Delete); err != nil {
			return WrapExitError(ExitCommandError, "delete slot", err)
		}
		return out.Success(fmt.Sprintf("deleted %q", opts.Delete))
	}

	slots, err := st.List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "list slots", err)
	}
	return out.Success(savesListing{Slots: slots})
}
