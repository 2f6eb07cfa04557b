package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/core/geo"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/wire"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Submit and review survey jobs",
	Long: `Survey jobs move through two approval gates:

  SUBMITTED → NIS_REVIEW → ADMIN_REVIEW → COMPLETED

Admin approval issues one pillar number per requested coordinate. After
completion the surveyor uploads the blue copy and the admin the R of O document.`,
}

var jobSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a survey job",
	Example: `  cadastre job submit --surveyor SRV-0001 --client "Ada Obi" \
    --location "Plot 4, Jos" --coord 331245.000,712004.000 --coord 331300.5,712100.25`,
	RunE: func(cmd *cobra.Command, args []string) error {
		surveyorID, _ := cmd.Flags().GetString("surveyor")
		client, _ := cmd.Flags().GetString("client")
		clientPhone, _ := cmd.Flags().GetString("client-phone")
		clientEmail, _ := cmd.Flags().GetString("client-email")
		location, _ := cmd.Flags().GetString("location")
		required, _ := cmd.Flags().GetInt("pillars")
		raw, _ := cmd.Flags().GetStringArray("coord")

		coords := make([]geo.Coordinate, 0, len(raw))
		for _, s := range raw {
			c, err := parseCoordinate(s)
			if err != nil {
				return err
			}
			coords = append(coords, c)
		}
		if required == 0 {
			required = len(coords)
		}

		job, err := wire.JobService().SubmitJob(NewContext(), primary.SubmitJobRequest{
			SurveyorID:            surveyorID,
			ClientName:            client,
			ClientPhone:           clientPhone,
			ClientEmail:           clientEmail,
			LocationDescription:   location,
			RequestedCoordinates:  coords,
			PillarNumbersRequired: required,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Submitted job %s (%d pillar numbers requested)\n", job.ID, job.PillarNumbersRequired)
		return nil
	},
}

var jobShowCmd = &cobra.Command{
	Use:   "show [job-id]",
	Short: "Show job details, steps, pillars and documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := wire.JobService().GetJob(NewContext(), args[0])
		if err != nil {
			return err
		}
		printJob(job)
		return nil
	},
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs visible to the acting user",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		surveyorID, _ := cmd.Flags().GetString("surveyor")
		limit, _ := cmd.Flags().GetInt("limit")

		jobs, err := wire.JobService().ListJobs(NewContext(), primary.JobFilters{
			Status:     status,
			SurveyorID: surveyorID,
			Limit:      limit,
		})
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSURVEYOR\tCLIENT\tPILLARS\tSTATUS")
		fmt.Fprintln(w, "--\t--------\t------\t-------\t------")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", j.ID, j.SurveyorID, j.ClientName, j.PillarNumbersRequired, statusColor(j.Status))
		}
		w.Flush()
		return nil
	},
}

var jobAdminApproveCmd = &cobra.Command{
	Use:   "admin-approve [job-id]",
	Short: "Complete a job and issue its pillar numbers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, _ := cmd.Flags().GetString("plan")
		series, _ := cmd.Flags().GetString("series")
		count, _ := cmd.Flags().GetInt("count")

		job, err := wire.JobService().AdminApprove(NewContext(), primary.AdminApproveRequest{
			JobID:           args[0],
			PlanNumber:      plan,
			SeriesPrefix:    series,
			CoordinateCount: count,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Job %s approved (plan %s)\n", job.ID, job.PlanNumber)
		for _, p := range job.Pillars {
			fmt.Printf("  %s  E %s  N %s\n", p.PillarNumber, p.Coordinate.Easting, p.Coordinate.Northing)
		}
		return nil
	},
}

// jobTransitionCmd builds the review subcommands that take only a job ID and
// an optional rejection reason.
func jobTransitionCmd(use, short, verb string, withReason bool, call func(id, reason string) (*primary.Job, error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " [job-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := ""
			if withReason {
				reason, _ = cmd.Flags().GetString("reason")
			}
			job, err := call(args[0], reason)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Job %s %s (%s)\n", job.ID, verb, statusColor(job.Status))
			return nil
		},
	}
	if withReason {
		c.Flags().StringP("reason", "r", "", "Rejection reason (required)")
		c.MarkFlagRequired("reason")
	}
	return c
}

// jobUploadCmd builds the document upload subcommands.
func jobUploadCmd(use, short, label string, call func(id string, doc primary.DocumentRef) (*primary.Job, error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " [job-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			file, _ := cmd.Flags().GetString("file")
			size, _ := cmd.Flags().GetInt64("size")
			mime, _ := cmd.Flags().GetString("mime")

			job, err := call(args[0], primary.DocumentRef{URL: url, FileName: file, SizeBytes: size, MimeType: mime})
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s recorded for job %s\n", label, job.ID)
			return nil
		},
	}
	c.Flags().String("url", "", "Stored file URL (required)")
	c.Flags().String("file", "", "Original file name")
	c.Flags().Int64("size", 0, "File size in bytes")
	c.Flags().String("mime", "application/pdf", "MIME type")
	c.MarkFlagRequired("url")
	return c
}

func init() {
	jobSubmitCmd.Flags().String("surveyor", "", "Surveyor ID submitting the job (required)")
	jobSubmitCmd.Flags().StringP("client", "c", "", "Client name (required)")
	jobSubmitCmd.Flags().String("client-phone", "", "Client phone")
	jobSubmitCmd.Flags().String("client-email", "", "Client email")
	jobSubmitCmd.Flags().StringP("location", "l", "", "Location description (required)")
	jobSubmitCmd.Flags().IntP("pillars", "p", 0, "Pillar numbers required (default: number of --coord)")
	jobSubmitCmd.Flags().StringArray("coord", nil, "Requested coordinate as EASTING,NORTHING (repeatable)")
	jobSubmitCmd.MarkFlagRequired("surveyor")
	jobSubmitCmd.MarkFlagRequired("client")
	jobSubmitCmd.MarkFlagRequired("location")

	jobListCmd.Flags().StringP("status", "s", "", "Filter by status")
	jobListCmd.Flags().String("surveyor", "", "Filter by surveyor ID")
	jobListCmd.Flags().IntP("limit", "n", 0, "Maximum rows")

	jobAdminApproveCmd.Flags().String("plan", "", "Plan number (required)")
	jobAdminApproveCmd.Flags().String("series", "", "Pillar series prefix (default: configured series)")
	jobAdminApproveCmd.Flags().Int("count", 0, "Coordinate count to confirm (default: job's requested count)")
	jobAdminApproveCmd.MarkFlagRequired("plan")

	svc := wire.JobService
	jobCmd.AddCommand(jobSubmitCmd)
	jobCmd.AddCommand(jobShowCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobTransitionCmd("start-review", "Move a submitted job into NIS review", "in NIS review", false,
		func(id, _ string) (*primary.Job, error) { return svc().StartNISReview(NewContext(), id) }))
	jobCmd.AddCommand(jobTransitionCmd("nis-approve", "Pass the NIS gate", "NIS approved", false,
		func(id, _ string) (*primary.Job, error) { return svc().NISApprove(NewContext(), id) }))
	jobCmd.AddCommand(jobTransitionCmd("nis-reject", "Reject at the NIS gate", "rejected", true,
		func(id, reason string) (*primary.Job, error) { return svc().NISReject(NewContext(), id, reason) }))
	jobCmd.AddCommand(jobAdminApproveCmd)
	jobCmd.AddCommand(jobTransitionCmd("admin-reject", "Reject at the admin gate", "rejected", true,
		func(id, reason string) (*primary.Job, error) { return svc().AdminReject(NewContext(), id, reason) }))
	jobCmd.AddCommand(jobUploadCmd("upload-blue-copy", "Record the blue copy of a completed job", "Blue copy",
		func(id string, doc primary.DocumentRef) (*primary.Job, error) {
			return svc().UploadBlueCopy(NewContext(), id, doc)
		}))
	jobCmd.AddCommand(jobUploadCmd("upload-ro-document", "Record the R of O document of a completed job", "R of O document",
		func(id string, doc primary.DocumentRef) (*primary.Job, error) {
			return svc().UploadRODocument(NewContext(), id, doc)
		}))
}

// JobCmd returns the job command
func JobCmd() *cobra.Command {
	return jobCmd
}
