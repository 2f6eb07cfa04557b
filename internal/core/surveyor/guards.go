package surveyor

import (
	"fmt"
	"strings"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
)

// RegistrationContext provides the pre-fetched facts the registration guard needs.
type RegistrationContext struct {
	UserID           string
	FullName         string
	SurconNumber     string
	NISNumber        string
	UserHasProfile   bool
	SurconTakenBy    string // surveyor ID holding the SURCON number, empty if free
	NISNumberTakenBy string // surveyor ID holding the NIS number, empty if free
}

// CanRegister evaluates whether a new surveyor profile may be written.
// Rules:
// - Name and both registration numbers are required
// - One profile per user
// - Both registration numbers are globally unique
func CanRegister(ctx RegistrationContext) actor.GuardResult {
	var missing []string
	if strings.TrimSpace(ctx.FullName) == "" {
		missing = append(missing, "full name")
	}
	if strings.TrimSpace(ctx.SurconNumber) == "" {
		missing = append(missing, "SURCON number")
	}
	if strings.TrimSpace(ctx.NISNumber) == "" {
		missing = append(missing, "NIS number")
	}
	if len(missing) > 0 {
		return actor.Deny(errs.KindValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}

	if ctx.UserHasProfile {
		return actor.Deny(errs.KindConflict, "user %s already has a surveyor profile", ctx.UserID)
	}
	if ctx.SurconTakenBy != "" {
		return actor.Deny(errs.KindConflict, "SURCON number %s is already registered to %s", ctx.SurconNumber, ctx.SurconTakenBy)
	}
	if ctx.NISNumberTakenBy != "" {
		return actor.Deny(errs.KindConflict, "NIS number %s is already registered to %s", ctx.NISNumber, ctx.NISNumberTakenBy)
	}
	return actor.Allow()
}

// FormatID renders a surveyor ID from its sequence.
func FormatID(n int) string {
	return fmt.Sprintf("SRV-%04d", n)
}
