// Package access decides whether a caller may proceed given platform state.
// Decisions are expressed as Rego policy and evaluated in-process with OPA.
package access

import (
	"context"

	identitydomain "biblio/backend/internal/identity/domain"
	platformdomain "biblio/backend/internal/platformsettings/domain"
)

// Decision holds the result of an access policy evaluation.
type Decision struct {
	Allow bool
	// Reason is the operator-facing message when Allow is false.
	Reason string
}

// Evaluator evaluates platform access policy using OPA or other engines.
type Evaluator interface {
	// EvaluateAccess decides whether the caller may invoke fullMethod given the
	// platform maintenance state. principal may be nil for unauthenticated calls.
	EvaluateAccess(
		ctx context.Context,
		settings *platformdomain.MaintenanceSettings,
		principal *identitydomain.Principal,
		fullMethod string,
	) (Decision, error)
}
