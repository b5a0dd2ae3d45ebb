package access

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	identitydomain "biblio/backend/internal/identity/domain"
	platformdomain "biblio/backend/internal/platformsettings/domain"
)

// Default Rego policy: during maintenance only administrators and the
// entry-point methods (login, refresh, password reset, health) get through.
const defaultRegoPolicy = `package biblio.access

default allow := true
default reason := ""

exempt_methods := {
	"/grpc.health.v1.Health/Check",
	"/grpc.health.v1.Health/Watch",
	"/biblio.auth.v1.AuthService/Login",
	"/biblio.auth.v1.AuthService/Refresh",
	"/biblio.auth.v1.AuthService/Logout",
	"/biblio.credential.v1.CredentialService/RequestPasswordReset",
	"/biblio.credential.v1.CredentialService/ResetPassword",
}

allow := false if {
	input.platform.maintenance_mode
	not input.principal.is_admin
	not input.method in exempt_methods
}

reason := msg if {
	not allow
	msg := input.platform.notice
	msg != ""
}

reason := "platform is under maintenance" if {
	not allow
	input.platform.notice == ""
}
`

// OPAEvaluator evaluates access policy using OPA Rego.
type OPAEvaluator struct{}

// NewOPAEvaluator returns an OPA-based access evaluator.
func NewOPAEvaluator() *OPAEvaluator {
	return &OPAEvaluator{}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and
// evaluate the default policy. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := compileDefault()
	if err != nil {
		return err
	}
	input := buildInput(nil, nil, "/grpc.health.v1.Health/Check")
	q := rego.New(
		rego.Query("data.biblio.access.allow"),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// EvaluateAccess decides whether the caller may invoke fullMethod. Evaluation
// failures fail open with a logged warning: a broken policy must not take the
// platform down harder than maintenance mode would.
func (e *OPAEvaluator) EvaluateAccess(
	ctx context.Context,
	settings *platformdomain.MaintenanceSettings,
	principal *identitydomain.Principal,
	fullMethod string,
) (Decision, error) {
	compiler, err := compileDefault()
	if err != nil {
		log.Printf("access: policy compile failed: %v, allowing", err)
		return Decision{Allow: true}, nil
	}
	input := buildInput(settings, principal, fullMethod)

	out := Decision{Allow: true}

	allowQuery := rego.New(
		rego.Query("data.biblio.access.allow"),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	allowRS, err := allowQuery.Eval(ctx)
	if err != nil {
		log.Printf("access: policy evaluation failed: %v, allowing", err)
		return Decision{Allow: true}, nil
	}
	if len(allowRS) > 0 && len(allowRS[0].Expressions) > 0 {
		if v, ok := allowRS[0].Expressions[0].Value.(bool); ok {
			out.Allow = v
		}
	}
	if out.Allow {
		return out, nil
	}

	reasonQuery := rego.New(
		rego.Query("data.biblio.access.reason"),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	reasonRS, err := reasonQuery.Eval(ctx)
	if err == nil && len(reasonRS) > 0 && len(reasonRS[0].Expressions) > 0 {
		if v, ok := reasonRS[0].Expressions[0].Value.(string); ok {
			out.Reason = v
		}
	}
	return out, nil
}

func compileDefault() (*ast.Compiler, error) {
	modules := map[string]string{"access.rego": defaultRegoPolicy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	return compiler, nil
}

func buildInput(
	settings *platformdomain.MaintenanceSettings,
	principal *identitydomain.Principal,
	fullMethod string,
) map[string]interface{} {
	platform := map[string]interface{}{
		"maintenance_mode": false,
		"notice":           "",
	}
	if settings != nil {
		platform["maintenance_mode"] = settings.MaintenanceMode
		platform["notice"] = settings.Notice
	}
	principalMap := map[string]interface{}{
		"user_id":  "",
		"is_admin": false,
		"roles":    []string{},
	}
	if principal != nil {
		principalMap["user_id"] = principal.UserID
		principalMap["is_admin"] = principal.IsAdmin()
		principalMap["roles"] = principal.RoleNames()
	}
	return map[string]interface{}{
		"platform":  platform,
		"principal": principalMap,
		"method":    fullMethod,
	}
}
