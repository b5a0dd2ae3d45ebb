package interceptors

import (
	"context"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"biblio/backend/internal/access"
	platformrepo "biblio/backend/internal/platformsettings/repository"
)

// MaintenanceUnary returns a unary server interceptor that consults the access
// policy before each RPC: during maintenance only administrators and the
// policy's exempt entry points get through, everyone else sees Unavailable.
// Settings reads and policy failures fail open with a logged warning.
// Runs after AuthUnary so the principal (if any) is already in context.
func MaintenanceUnary(settings platformrepo.Repository, evaluator access.Evaluator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		state, err := settings.GetMaintenanceSettings(ctx)
		if err != nil {
			log.Printf("maintenance: settings read failed: %v, allowing", err)
			return handler(ctx, req)
		}
		if !state.MaintenanceMode {
			return handler(ctx, req)
		}
		principal, _ := GetPrincipal(ctx)
		decision, err := evaluator.EvaluateAccess(ctx, state, principal, info.FullMethod)
		if err != nil {
			log.Printf("maintenance: policy evaluation failed: %v, allowing", err)
			return handler(ctx, req)
		}
		if !decision.Allow {
			return nil, status.Error(codes.Unavailable, decision.Reason)
		}
		return handler(ctx, req)
	}
}
