package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pawhealth/pkg/gamify"
)

func (a *App) xpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xp",
		Short: "Track activity XP, streaks and badges per dog",
	}
	cmd.AddCommand(a.xpRecordCmd(), a.xpShowCmd())
	return cmd
}

func (a *App) xpRecordCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "record <dog-id> <activity>",
		Short: "Record an activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				when = parsed
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			tracker := gamify.NewTracker(st, loc, a.logger)
			result, err := tracker.Record(cmd.Context(), args[0], gamify.ParseActivity(args[1]), when)
			if err != nil {
				return err
			}
			return a.printJSON(result)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Activity time in RFC 3339 (default: now)")
	return cmd
}

func (a *App) xpShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <dog-id>",
		Short: "Show the progress of a dog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			progress, err := st.Progress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(progress)
		},
	}
}
