package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/cadastre/internal/core/geo"
	"github.com/example/cadastre/internal/core/job"
	"github.com/example/cadastre/internal/core/surveyor"
	"github.com/example/cadastre/internal/ports/primary"
)

// statusColor returns a colored status string for terminal display.
func statusColor(status string) string {
	return color.New(statusAttribute(status)).Sprint(status)
}

// statusAttribute picks the color for a job, surveyor or step status.
// Rejections are red, other final states green, reviews yellow.
func statusAttribute(status string) color.Attribute {
	js, ss, step := job.Status(status), surveyor.Status(status), job.StepStatus(status)
	switch {
	case js == job.StatusNISRejected || js == job.StatusAdminRejected || step == job.StepRejected:
		return color.FgRed
	case job.IsTerminal(js) || surveyor.IsTerminal(ss) || step == job.StepDone:
		return color.FgGreen
	case js == job.StatusNISReview || js == job.StatusAdminReview ||
		ss == surveyor.StatusPendingNISReview || ss == surveyor.StatusNISApproved ||
		step == job.StepInProgress:
		return color.FgYellow
	default:
		return color.FgCyan
	}
}

// parseCoordinate reads an "EASTING,NORTHING" pair. The values are kept as
// typed; numeric validity is only checked when a pillar is searched.
func parseCoordinate(s string) (geo.Coordinate, error) {
	e, n, ok := strings.Cut(s, ",")
	e, n = strings.TrimSpace(e), strings.TrimSpace(n)
	if !ok || e == "" || n == "" {
		return geo.Coordinate{}, fmt.Errorf("invalid coordinate %q: expected EASTING,NORTHING", s)
	}
	return geo.Coordinate{Easting: e, Northing: n}, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func printSurveyor(s *primary.Surveyor) {
	fmt.Printf("%s: %s\n", s.ID, s.FullName)
	fmt.Printf("  Status: %s\n", statusColor(s.Status))
	fmt.Printf("  User: %s\n", s.UserID)
	fmt.Printf("  SURCON: %s\n", s.SurconNumber)
	fmt.Printf("  NIS: %s\n", s.NISNumber)
	if s.Email != "" {
		fmt.Printf("  Email: %s\n", s.Email)
	}
	if s.Phone != "" {
		fmt.Printf("  Phone: %s\n", s.Phone)
	}
	if s.VerifiedAt != nil {
		fmt.Printf("  Verified: %s\n", formatTime(s.VerifiedAt))
	}
	if s.RejectionReason != "" {
		fmt.Printf("  Rejection: %s\n", s.RejectionReason)
	}
	fmt.Printf("  Registered: %s\n", s.CreatedAt.Format("2006-01-02 15:04"))
}

func printJob(j *primary.Job) {
	fmt.Printf("%s: %s\n", j.ID, j.ClientName)
	fmt.Printf("  Status: %s\n", statusColor(j.Status))
	fmt.Printf("  Surveyor: %s\n", j.SurveyorID)
	fmt.Printf("  Location: %s\n", j.LocationDescription)
	fmt.Printf("  Pillars required: %d\n", j.PillarNumbersRequired)
	if j.PlanNumber != "" {
		fmt.Printf("  Plan: %s\n", j.PlanNumber)
	}
	if j.RejectionReason != "" {
		fmt.Printf("  Rejection: %s\n", j.RejectionReason)
	}
	fmt.Printf("  Submitted: %s\n", j.SubmittedAt.Format("2006-01-02 15:04"))
	if j.DateApproved != nil {
		fmt.Printf("  Approved: %s\n", formatTime(j.DateApproved))
	}

	if len(j.Steps) > 0 {
		fmt.Println("\nSteps:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, s := range j.Steps {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", s.Order, s.Name, statusColor(s.Status), formatTime(s.CompletedAt))
		}
		w.Flush()
	}

	if len(j.RequestedCoordinates) > 0 && len(j.Pillars) == 0 {
		fmt.Println("\nRequested coordinates:")
		for _, c := range j.RequestedCoordinates {
			fmt.Printf("  E %s  N %s\n", c.Easting, c.Northing)
		}
	}

	if len(j.Pillars) > 0 {
		fmt.Println("\nPillars:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, p := range j.Pillars {
			fmt.Fprintf(w, "  %s\tE %s\tN %s\n", p.PillarNumber, p.Coordinate.Easting, p.Coordinate.Northing)
		}
		w.Flush()
	}

	if len(j.Documents) > 0 {
		fmt.Println("\nDocuments:")
		for _, d := range j.Documents {
			fmt.Printf("  %s: %s (%s)\n", d.Kind, d.FileName, d.URL)
		}
	}
}
