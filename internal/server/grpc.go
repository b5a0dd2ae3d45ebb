// Package server assembles the gRPC server: interceptor chain, telemetry
// stats handler, and the standard health service.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"biblio/backend/internal/access"
	"biblio/backend/internal/audit"
	platformrepo "biblio/backend/internal/platformsettings/repository"
	"biblio/backend/internal/server/interceptors"
)

// PublicMethods are the full method names reachable without a Bearer token.
// Everything else requires a live, verified access session.
var PublicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check":                                        true,
	"/grpc.health.v1.Health/Watch":                                        true,
	"/biblio.auth.v1.AuthService/Register":                                true,
	"/biblio.auth.v1.AuthService/Login":                                   true,
	"/biblio.auth.v1.AuthService/Refresh":                                 true,
	"/biblio.auth.v1.AuthService/Logout":                                  true,
	"/biblio.credential.v1.CredentialService/RequestPasswordReset":        true,
	"/biblio.credential.v1.CredentialService/ResetPassword":               true,
	"/biblio.credential.v1.CredentialService/RequestMailVerification":     true,
	"/biblio.credential.v1.CredentialService/ConfirmMailVerification":     true,
	"/biblio.credential.v1.CredentialService/ConfirmMailVerificationLink": true,
}

// unauditedMethods are not recorded by the audit interceptor.
var unauditedMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// Deps holds the cross-cutting dependencies of the server.
type Deps struct {
	// Auth resolves bearer tokens; required.
	Auth interceptors.Authenticator
	// Settings and Access drive the maintenance gate. If either is nil the gate is skipped.
	Settings platformrepo.Repository
	Access   access.Evaluator
	// Audit receives per-RPC audit events. If nil, no RPCs are audited.
	Audit audit.AuditLogger
	// Register adds the transport services (generated handlers) to the server.
	Register func(grpc.ServiceRegistrar)
}

// New builds the gRPC server with the interceptor chain (auth, maintenance
// gate, audit), the otelgrpc stats handler, and the grpc.health.v1 service.
// The returned health server starts in NOT_SERVING; flip it once wiring is done.
func New(deps Deps) (*grpc.Server, *health.Server) {
	chain := []grpc.UnaryServerInterceptor{
		interceptors.AuthUnary(deps.Auth, PublicMethods),
	}
	if deps.Settings != nil && deps.Access != nil {
		chain = append(chain, interceptors.MaintenanceUnary(deps.Settings, deps.Access))
	}
	if deps.Audit != nil {
		chain = append(chain, interceptors.AuditUnary(deps.Audit, unauditedMethods))
	}

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(chain...),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	if deps.Register != nil {
		deps.Register(s)
	}
	return s, hs
}

// Ready flips the health service to SERVING after a successful readiness probe.
func Ready(hs *health.Server) {
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}
