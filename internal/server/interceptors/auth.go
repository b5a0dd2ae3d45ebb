package interceptors

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	identitydomain "biblio/backend/internal/identity/domain"
)

const bearerPrefix = "bearer "

// Authenticator resolves a bearer access token to a Principal
// (implemented by the identity verifier).
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identitydomain.Principal, error)
}

// AuthUnary returns a unary server interceptor that resolves the Bearer
// (access) token from gRPC metadata and puts the Principal in context for
// protected RPCs. publicMethods is the set of full method names that do not
// require a Bearer token (e.g. AuthService Register, Login, Refresh; health).
// On a public method a present-but-bad token is ignored, not rejected.
func AuthUnary(auth Authenticator, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token := extractBearer(ctx)
		public := publicMethods[info.FullMethod]

		if token == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		principal, err := auth.Authenticate(ctx, token)
		if err != nil {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		return handler(WithPrincipal(ctx, principal), req)
	}
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
