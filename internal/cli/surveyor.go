package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/wire"
)

var surveyorCmd = &cobra.Command{
	Use:   "surveyor",
	Short: "Register and verify surveyors",
	Long: `Surveyors register once and are verified in two stages:
NIS approval, then admin approval. Only verified surveyors can submit jobs.`,
}

var surveyorRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the acting user as a surveyor",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		surcon, _ := cmd.Flags().GetString("surcon")
		nis, _ := cmd.Flags().GetString("nis")
		email, _ := cmd.Flags().GetString("email")
		phone, _ := cmd.Flags().GetString("phone")

		s, err := wire.SurveyorService().RegisterSurveyor(NewContext(), primary.RegisterSurveyorRequest{
			FullName:     name,
			Email:        email,
			Phone:        phone,
			SurconNumber: surcon,
			NISNumber:    nis,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Registered surveyor %s (%s)\n", s.ID, statusColor(s.Status))
		return nil
	},
}

var surveyorShowCmd = &cobra.Command{
	Use:   "show [surveyor-id]",
	Short: "Show surveyor details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := wire.SurveyorService().GetSurveyor(NewContext(), args[0])
		if err != nil {
			return err
		}
		printSurveyor(s)
		return nil
	},
}

var surveyorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List surveyors",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		surveyors, err := wire.SurveyorService().ListSurveyors(NewContext(), primary.SurveyorFilters{
			Status: status,
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		if len(surveyors) == 0 {
			fmt.Println("No surveyors found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSURCON\tSTATUS")
		fmt.Fprintln(w, "--\t----\t------\t------")
		for _, s := range surveyors {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.FullName, s.SurconNumber, statusColor(s.Status))
		}
		w.Flush()
		return nil
	},
}

// surveyorActionCmd builds the approve/reject subcommands, which differ only
// in the service call and whether a reason is taken.
func surveyorActionCmd(use, short, verb string, withReason bool, call func(cmd *cobra.Command, id, reason string) (*primary.Surveyor, error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " [surveyor-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := ""
			if withReason {
				reason, _ = cmd.Flags().GetString("reason")
			}
			s, err := call(cmd, args[0], reason)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Surveyor %s %s (%s)\n", s.ID, verb, statusColor(s.Status))
			return nil
		},
	}
	if withReason {
		c.Flags().StringP("reason", "r", "", "Rejection reason (required)")
		c.MarkFlagRequired("reason")
	}
	return c
}

func init() {
	surveyorRegisterCmd.Flags().StringP("name", "n", "", "Full name (required)")
	surveyorRegisterCmd.Flags().String("surcon", "", "SURCON registration number (required)")
	surveyorRegisterCmd.Flags().String("nis", "", "NIS membership number (required)")
	surveyorRegisterCmd.Flags().String("email", "", "Contact email")
	surveyorRegisterCmd.Flags().String("phone", "", "Contact phone")
	surveyorRegisterCmd.MarkFlagRequired("name")
	surveyorRegisterCmd.MarkFlagRequired("surcon")
	surveyorRegisterCmd.MarkFlagRequired("nis")

	surveyorListCmd.Flags().StringP("status", "s", "", "Filter by status")
	surveyorListCmd.Flags().IntP("limit", "l", 0, "Maximum rows")

	svc := wire.SurveyorService
	surveyorCmd.AddCommand(surveyorRegisterCmd)
	surveyorCmd.AddCommand(surveyorShowCmd)
	surveyorCmd.AddCommand(surveyorListCmd)
	surveyorCmd.AddCommand(surveyorActionCmd("nis-approve", "Pass the NIS verification stage", "NIS approved", false,
		func(cmd *cobra.Command, id, _ string) (*primary.Surveyor, error) {
			return svc().NISApproveSurveyor(NewContext(), id)
		}))
	surveyorCmd.AddCommand(surveyorActionCmd("nis-reject", "Reject at the NIS stage", "rejected", true,
		func(cmd *cobra.Command, id, reason string) (*primary.Surveyor, error) {
			return svc().NISRejectSurveyor(NewContext(), id, reason)
		}))
	surveyorCmd.AddCommand(surveyorActionCmd("admin-approve", "Verify a NIS-approved surveyor", "verified", false,
		func(cmd *cobra.Command, id, _ string) (*primary.Surveyor, error) {
			return svc().AdminApproveSurveyor(NewContext(), id)
		}))
	surveyorCmd.AddCommand(surveyorActionCmd("admin-reject", "Reject at the admin stage", "rejected", true,
		func(cmd *cobra.Command, id, reason string) (*primary.Surveyor, error) {
			return svc().AdminRejectSurveyor(NewContext(), id, reason)
		}))
}

// SurveyorCmd returns the surveyor command
func SurveyorCmd() *cobra.Command {
	return surveyorCmd
}
