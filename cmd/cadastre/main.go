package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/cli"
	"github.com/example/cadastre/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "cadastre",
		Short:   "Cadastral survey job tracking",
		Version: version.String(),
		Long: `cadastre tracks cadastral survey jobs through NIS and admin approval,
issues pillar numbers from per-series counters, and locates pillars on the map.`,
	}
	cli.Bootstrap(rootCmd)

	rootCmd.AddCommand(cli.ProfileCmd())
	rootCmd.AddCommand(cli.SurveyorCmd())
	rootCmd.AddCommand(cli.JobCmd())
	rootCmd.AddCommand(cli.PillarCmd())
	rootCmd.AddCommand(cli.LogCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
