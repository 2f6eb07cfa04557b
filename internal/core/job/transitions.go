// Package job contains the pure business logic for the survey job workflow.
// This is part of the Functional Core - no I/O, only pure functions.
package job

import (
	"strings"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
)

// Status represents the possible states of a survey job.
type Status string

const (
	StatusSubmitted     Status = "SUBMITTED"
	StatusNISReview     Status = "NIS_REVIEW"
	StatusAdminReview   Status = "ADMIN_REVIEW"
	StatusCompleted     Status = "COMPLETED"
	StatusNISRejected   Status = "NIS_REJECTED"
	StatusAdminRejected Status = "ADMIN_REJECTED"
)

// Action is a job workflow transition.
type Action string

const (
	ActionSubmit           Action = "submit"
	ActionStartNISReview   Action = "start-nis-review"
	ActionNISApprove       Action = "nis-approve"
	ActionNISReject        Action = "nis-reject"
	ActionAdminApprove     Action = "admin-approve"
	ActionAdminReject      Action = "admin-reject"
	ActionUploadBlueCopy   Action = "upload-blue-copy"
	ActionUploadRODocument Action = "upload-ro-document"
)

// Rule declares the single role allowed to invoke an action and the states
// it may be invoked from. Document uploads have no From states: they are
// gated on job fields instead (see guards.go).
type Rule struct {
	Role actor.Role
	From []Status
	To   Status
}

// Rules is the job transition table. The service looks the required role up
// here rather than branching per operation.
var Rules = map[Action]Rule{
	ActionSubmit:           {Role: actor.RoleSurveyor, To: StatusSubmitted},
	ActionStartNISReview:   {Role: actor.RoleNISOfficer, From: []Status{StatusSubmitted}, To: StatusNISReview},
	ActionNISApprove:       {Role: actor.RoleNISOfficer, From: []Status{StatusSubmitted, StatusNISReview}, To: StatusAdminReview},
	ActionNISReject:        {Role: actor.RoleNISOfficer, From: []Status{StatusSubmitted, StatusNISReview}, To: StatusNISRejected},
	ActionAdminApprove:     {Role: actor.RoleAdmin, From: []Status{StatusAdminReview}, To: StatusCompleted},
	ActionAdminReject:      {Role: actor.RoleAdmin, From: []Status{StatusAdminReview}, To: StatusAdminRejected},
	ActionUploadBlueCopy:   {Role: actor.RoleSurveyor},
	ActionUploadRODocument: {Role: actor.RoleAdmin},
}

// RequiredRole returns the role an action declares.
func RequiredRole(a Action) actor.Role {
	return Rules[a].Role
}

// Input carries the caller-supplied arguments of a transition.
type Input struct {
	Reason     string
	PlanNumber string
}

// Transition is the value object a status transition produces: the new status
// and every side effect the caller must persist in the same unit of work.
type Transition struct {
	NewStatus       Status
	Steps           []StepChange
	DateApproved    *time.Time
	PlanNumber      string
	RejectionReason string
}

// Apply validates a status transition against the current status and returns
// its effects. Uploads are not status transitions; use the upload guards.
// The caller should pass the current time to enable testing.
func Apply(current Status, action Action, in Input, now time.Time) (Transition, error) {
	rule, ok := Rules[action]
	if !ok || action == ActionSubmit || len(rule.From) == 0 {
		return Transition{}, errs.Validation("%q is not a job status transition", action)
	}
	if !allowedFrom(rule, current) {
		return Transition{}, errs.InvalidTransition(string(current),
			"cannot %s a job in status %s", action, current)
	}

	t := Transition{NewStatus: rule.To}
	switch action {
	case ActionStartNISReview:
		t.Steps = []StepChange{start(StepNISReview)}
	case ActionNISApprove:
		t.Steps = []StepChange{complete(StepNISReview, now), start(StepAdminReview)}
	case ActionNISReject, ActionAdminReject:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return Transition{}, errs.Validation("a reason is required to %s a job", action)
		}
		step := StepNISReview
		if action == ActionAdminReject {
			step = StepAdminReview
		}
		t.RejectionReason = reason
		t.Steps = []StepChange{reject(step, reason)}
	case ActionAdminApprove:
		plan := strings.TrimSpace(in.PlanNumber)
		if plan == "" {
			return Transition{}, errs.Validation("plan number is required to approve a job")
		}
		t.PlanNumber = plan
		t.DateApproved = &now
		t.Steps = []StepChange{complete(StepAdminReview, now), complete(StepPillarAssignment, now)}
	}
	return t, nil
}

// Submission returns the effects of creating a job: the initial status and
// the step changes applied on top of InitialSteps.
func Submission(now time.Time) Transition {
	return Transition{
		NewStatus: StatusSubmitted,
		Steps:     []StepChange{complete(StepSubmitted, now)},
	}
}

func allowedFrom(rule Rule, current Status) bool {
	for _, s := range rule.From {
		if s == current {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a job can no longer change status.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusNISRejected || s == StatusAdminRejected
}
