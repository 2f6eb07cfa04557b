package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/wire"
)

var logCmd = &cobra.Command{
	Use:   "log [job|surveyor] [id]",
	Short: "Show the audit history of a job or surveyor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := wire.LogService().ListLogs(NewContext(), primary.LogFilters{
			EntityType: args[0],
			EntityID:   args[1],
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No history.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTOR\tACTION\tFROM\tTO")
		for _, e := range entries {
			from, to := e.OldValue, e.NewValue
			if from == "" {
				from = "-"
			}
			if to == "" {
				to = "-"
			}
			fmt.Fprintf(w, "%s\t%s (%s)\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.ActorID, e.ActorRole, e.Action, from, to)
		}
		w.Flush()
		return nil
	},
}

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	return logCmd
}
