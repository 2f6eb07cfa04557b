// Package surveyor contains the pure business logic for surveyor verification.
// This is part of the Functional Core - no I/O, only pure functions.
package surveyor

import (
	"strings"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
)

// Status represents the verification state of a surveyor.
type Status string

const (
	StatusPendingNISReview Status = "PENDING_NIS_REVIEW"
	StatusNISApproved      Status = "NIS_APPROVED"
	StatusVerified         Status = "VERIFIED"
	StatusNISRejected      Status = "NIS_REJECTED"
	StatusAdminRejected    Status = "ADMIN_REJECTED"
)

// Action is a verification transition.
type Action string

const (
	ActionNISApprove   Action = "nis-approve"
	ActionNISReject    Action = "nis-reject"
	ActionAdminApprove Action = "admin-approve"
	ActionAdminReject  Action = "admin-reject"
)

// Rule declares the single role allowed to invoke an action, and the state it moves between.
type Rule struct {
	Role    actor.Role
	From    Status
	To      Status
	Stamps  bool // refreshes the verification timestamp
	Rejects bool // requires a reason
}

// Rules is the surveyor transition table.
var Rules = map[Action]Rule{
	ActionNISApprove:   {Role: actor.RoleNISOfficer, From: StatusPendingNISReview, To: StatusNISApproved, Stamps: true},
	ActionNISReject:    {Role: actor.RoleNISOfficer, From: StatusPendingNISReview, To: StatusNISRejected, Rejects: true},
	ActionAdminApprove: {Role: actor.RoleAdmin, From: StatusNISApproved, To: StatusVerified, Stamps: true},
	ActionAdminReject:  {Role: actor.RoleAdmin, From: StatusNISApproved, To: StatusAdminRejected, Rejects: true},
}

// InitialStatus returns the status assigned at registration.
func InitialStatus() Status {
	return StatusPendingNISReview
}

// Transition is the value object a successful action produces.
type Transition struct {
	NewStatus       Status
	VerifiedAt      *time.Time // non-nil when the action stamps the timestamp
	RejectionReason string
}

// Apply validates action against the current status and computes the result.
// The caller passes the current time to enable testing.
func Apply(current Status, action Action, reason string, now time.Time) (Transition, error) {
	rule, ok := Rules[action]
	if !ok {
		return Transition{}, errs.Validation("unknown surveyor action %q", action)
	}
	if current != rule.From {
		return Transition{}, errs.InvalidTransition(string(current),
			"cannot %s surveyor in status %s (requires %s)", action, current, rule.From)
	}

	t := Transition{NewStatus: rule.To}
	if rule.Rejects {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return Transition{}, errs.Validation("a reason is required to %s a surveyor", action)
		}
		t.RejectionReason = reason
	}
	if rule.Stamps {
		t.VerifiedAt = &now
	}
	return t, nil
}

// CanSubmitJobs reports whether a surveyor in status may submit survey jobs.
func CanSubmitJobs(surveyorID string, status Status) actor.GuardResult {
	if status != StatusVerified {
		return actor.Deny(errs.KindPreconditionNotMet,
			"surveyor %s is not verified (status: %s)", surveyorID, status)
	}
	return actor.Allow()
}

// IsTerminal reports whether no further verification action applies.
func IsTerminal(s Status) bool {
	return s == StatusVerified || s == StatusNISRejected || s == StatusAdminRejected
}
