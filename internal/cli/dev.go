package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
	}
	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database with fresh fixtures",
		Long: `Delete the database and recreate it with fixture data:
three surveyors, one job per workflow stage and two issued pillars.

Safety: CADASTRE_DB_PATH must be set explicitly so the default
database in ~/.cadastre is never reset by accident.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv("CADASTRE_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("CADASTRE_DB_PATH not set\n\nThis safety check prevents accidental reset of your default database")
			}

			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			db.Close()
			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.GetDB(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")
			fmt.Println("\nSeeded entities:")
			fmt.Println("  - 3 surveyors (SRV-0001 verified)")
			fmt.Println("  - 3 jobs (submitted, admin review, completed)")
			fmt.Println("  - 2 pillars in SC/CN")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
