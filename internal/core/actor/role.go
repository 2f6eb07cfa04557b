// Package actor holds the roles that external identity providers assign
// and the single-role capability check every transition goes through.
package actor

import (
	"fmt"
	"strings"

	"github.com/example/cadastre/internal/core/errs"
)

// Role is the verified role supplied with each request.
type Role string

const (
	RoleSurveyor   Role = "SURVEYOR"
	RoleNISOfficer Role = "NIS_OFFICER"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole normalizes a role string. Unknown roles are rejected.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleSurveyor, RoleNISOfficer, RoleAdmin:
		return r, nil
	case "NIS":
		return RoleNISOfficer, nil
	}
	return "", errs.Validation("unknown role %q (want SURVEYOR, NIS_OFFICER or ADMIN)", s)
}

// Actor is the (id, role) pair trusted by the core.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s(%s)", a.ID, a.Role)
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    errs.Kind
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &errs.Error{Kind: r.Kind, Reason: r.Reason}
}

// Allow is the passing guard result.
func Allow() GuardResult { return GuardResult{Allowed: true} }

// Deny builds a failing guard result.
func Deny(kind errs.Kind, format string, args ...any) GuardResult {
	return GuardResult{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// CanPerform checks that the actor holds the one role a transition declares.
func CanPerform(a Actor, required Role, action string) GuardResult {
	if a.ID == "" {
		return Deny(errs.KindAuthorization, "no actor identity supplied for %s", action)
	}
	if a.Role != required {
		return Deny(errs.KindAuthorization, "%s requires role %s (actor %s has %s)", action, required, a.ID, a.Role)
	}
	return Allow()
}
