package job

import "time"

// StepName identifies an entry in the fixed workflow step catalog.
type StepName string

const (
	StepSubmitted        StepName = "Submitted"
	StepNISReview        StepName = "NIS Review"
	StepAdminReview      StepName = "Admin Review"
	StepPillarAssignment StepName = "Pillar Number Assignment"
	StepBlueCopyUpload   StepName = "Blue Copy Upload"
	StepRODocumentUpload StepName = "R of O Document Upload"
	StepCompleted        StepName = "Completed"
)

// Catalog is the ordered step catalog every job carries.
var Catalog = []StepName{
	StepSubmitted,
	StepNISReview,
	StepAdminReview,
	StepPillarAssignment,
	StepBlueCopyUpload,
	StepRODocumentUpload,
	StepCompleted,
}

// StepStatus is the state of a single workflow step.
type StepStatus string

const (
	StepPending    StepStatus = "Pending"
	StepInProgress StepStatus = "InProgress"
	StepDone       StepStatus = "Completed"
	StepRejected   StepStatus = "Rejected"
)

// Step is a workflow step as seen by the core.
type Step struct {
	Name        StepName
	Order       int
	Status      StepStatus
	CompletedAt *time.Time
	Note        string
}

// InitialSteps returns the full catalog, every step Pending, in order.
func InitialSteps() []Step {
	steps := make([]Step, len(Catalog))
	for i, name := range Catalog {
		steps[i] = Step{Name: name, Order: i + 1, Status: StepPending}
	}
	return steps
}

// StepOrder returns the 1-based catalog position of name, or 0 if unknown.
func StepOrder(name StepName) int {
	for i, n := range Catalog {
		if n == name {
			return i + 1
		}
	}
	return 0
}

// StepChange is one step mutation produced by a transition.
type StepChange struct {
	Name        StepName
	Status      StepStatus
	CompletedAt *time.Time
	Note        string
}

func complete(name StepName, now time.Time) StepChange {
	return StepChange{Name: name, Status: StepDone, CompletedAt: &now}
}

func start(name StepName) StepChange {
	return StepChange{Name: name, Status: StepInProgress}
}

func reject(name StepName, reason string) StepChange {
	return StepChange{Name: name, Status: StepRejected, Note: reason}
}

// ApplyChanges returns a copy of steps with changes applied by name.
func ApplyChanges(steps []Step, changes []StepChange) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	for _, c := range changes {
		for i := range out {
			if out[i].Name != c.Name {
				continue
			}
			out[i].Status = c.Status
			out[i].CompletedAt = c.CompletedAt
			out[i].Note = c.Note
		}
	}
	return out
}
