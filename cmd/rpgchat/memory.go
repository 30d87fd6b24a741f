package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/rpg-agent/memory"
)

func memoryCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect or reset the conversation summary and user preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored summary and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := f.memory()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			summary, err := u.Summary(ctx)
			if err != nil {
				return err
			}
			prefs, err := u.Preferences(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Summary:\n%s\n\nPreferences:\n%s\n", orNone(summary), orNone(prefs))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the stored summary and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := f.memory()
			if err != nil {
				return err
			}
			if err := u.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Memory reset.")
			return nil
		},
	})
	return cmd
}

// memory opens the artifact store without a summarizer; show and reset never
// summarize.
func (f *flags) memory() (*memory.Updater, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}
	return memory.NewUpdater(memory.NewFileStore(cfg.DataDir), nil, memory.Config{
		SummaryKey:     cfg.SummaryFile,
		PreferencesKey: cfg.PreferencesFile,
	}), nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
