package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/core/geo"
)

// SubmissionContext provides what the submission guard evaluates.
type SubmissionContext struct {
	ClientName            string
	LocationDescription   string
	PillarNumbersRequired int
	RequestedCoordinates  []geo.Coordinate
	MaxBatch              int
}

// CanSubmit evaluates a job submission's fields.
// Rules:
// - Client name and location description are required
// - At least one pillar, at most MaxBatch
// - Requested coordinates, when present, match the pillar count and lie within the UTM extents
func CanSubmit(ctx SubmissionContext) actor.GuardResult {
	if strings.TrimSpace(ctx.ClientName) == "" {
		return actor.Deny(errs.KindValidation, "client name is required")
	}
	if strings.TrimSpace(ctx.LocationDescription) == "" {
		return actor.Deny(errs.KindValidation, "location description is required")
	}
	if ctx.PillarNumbersRequired < 1 || ctx.PillarNumbersRequired > ctx.MaxBatch {
		return actor.Deny(errs.KindValidation,
			"pillar numbers required must be between 1 and %d (got %d)", ctx.MaxBatch, ctx.PillarNumbersRequired)
	}
	if len(ctx.RequestedCoordinates) == 0 {
		return actor.Allow()
	}
	if len(ctx.RequestedCoordinates) != ctx.PillarNumbersRequired {
		return actor.Deny(errs.KindValidation,
			"%d requested coordinates supplied for %d pillars", len(ctx.RequestedCoordinates), ctx.PillarNumbersRequired)
	}
	for i, c := range ctx.RequestedCoordinates {
		if _, ok := c.Parse(); !ok {
			return actor.Deny(errs.KindValidation,
				"requested coordinate %d is not a valid projected coordinate (easting %q, northing %q)", i+1, c.Easting, c.Northing)
		}
	}
	return actor.Allow()
}

// IssueContext provides context for the pillar issuance part of admin approval.
type IssueContext struct {
	JobID                 string
	PillarNumbersRequired int
	RequestedCoordinates  int
	RequestedCount        int // count supplied by the approver, 0 to use the job's
	ExistingPillars       int
}

// PillarCount resolves how many pillar numbers an approval issues.
// Rules:
// - A job receives exactly one batch
// - The approver's count, when given, must match one per requested coordinate
func PillarCount(ctx IssueContext) (int, actor.GuardResult) {
	if ctx.ExistingPillars > 0 {
		return 0, actor.Deny(errs.KindPreconditionNotMet,
			"job %s already has %d pillar numbers issued", ctx.JobID, ctx.ExistingPillars)
	}
	want := ctx.PillarNumbersRequired
	if ctx.RequestedCoordinates > 0 {
		want = ctx.RequestedCoordinates
	}
	if ctx.RequestedCount != 0 && ctx.RequestedCount != want {
		return 0, actor.Deny(errs.KindValidation,
			"job %s requires %d pillar numbers, approval requested %d", ctx.JobID, want, ctx.RequestedCount)
	}
	return want, actor.Allow()
}

// UploadContext provides context for document upload guards.
type UploadContext struct {
	JobID              string
	IssuedPillars      int
	BlueCopyUploaded   bool
	RODocumentUploaded bool
}

// CanUploadBlueCopy evaluates whether the surveyor's blue copy may be uploaded.
// Rules:
// - At least one pillar number has been issued for the job
// - No blue copy has been uploaded yet
func CanUploadBlueCopy(ctx UploadContext) actor.GuardResult {
	if ctx.IssuedPillars == 0 {
		return actor.Deny(errs.KindPreconditionNotMet,
			"job %s has no pillar numbers issued; the blue copy can be uploaded after admin approval", ctx.JobID)
	}
	if ctx.BlueCopyUploaded {
		return actor.Deny(errs.KindPreconditionNotMet, "blue copy already uploaded for job %s", ctx.JobID)
	}
	return actor.Allow()
}

// CanUploadRODocument evaluates whether the R of O document may be uploaded.
// Rules:
// - The blue copy has been uploaded
// - No R of O document has been uploaded yet
func CanUploadRODocument(ctx UploadContext) actor.GuardResult {
	if !ctx.BlueCopyUploaded {
		return actor.Deny(errs.KindPreconditionNotMet,
			"job %s has no blue copy; upload the blue copy before the R of O document", ctx.JobID)
	}
	if ctx.RODocumentUploaded {
		return actor.Deny(errs.KindPreconditionNotMet, "R of O document already uploaded for job %s", ctx.JobID)
	}
	return actor.Allow()
}

// BlueCopyUploadedSteps returns the step changes of a blue copy upload.
func BlueCopyUploadedSteps(now time.Time) []StepChange {
	return []StepChange{complete(StepBlueCopyUpload, now), start(StepRODocumentUpload)}
}

// RODocumentUploadedSteps returns the step changes of an R of O upload.
func RODocumentUploadedSteps(now time.Time) []StepChange {
	return []StepChange{complete(StepRODocumentUpload, now), complete(StepCompleted, now)}
}

// OwnsJob checks that a surveyor actor acts on their own job.
func OwnsJob(a actor.Actor, jobID, ownerUserID string) actor.GuardResult {
	if a.ID != ownerUserID {
		return actor.Deny(errs.KindAuthorization, "actor %s does not own job %s", a.ID, jobID)
	}
	return actor.Allow()
}

// FormatID renders a job number from its sequence.
func FormatID(n int) string {
	return fmt.Sprintf("JOB-%06d", n)
}
