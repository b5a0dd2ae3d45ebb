// Package rbac holds role checks shared by protected operations.
package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	identitydomain "biblio/backend/internal/identity/domain"
	"biblio/backend/internal/server/interceptors"
	userdomain "biblio/backend/internal/user/domain"
)

// RequireAdmin ensures the caller is authenticated and holds the admin role.
// Returns the principal on success; returns a gRPC error (Unauthenticated or
// PermissionDenied) on failure.
func RequireAdmin(ctx context.Context) (*identitydomain.Principal, error) {
	return RequireRole(ctx, userdomain.RoleAdmin)
}

// RequireLibrarian ensures the caller is authenticated and holds the
// librarian or admin role.
func RequireLibrarian(ctx context.Context) (*identitydomain.Principal, error) {
	p, ok := interceptors.GetPrincipal(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	if !p.HasRole(userdomain.RoleLibrarian) && !p.HasRole(userdomain.RoleAdmin) {
		return nil, status.Error(codes.PermissionDenied, "librarian role required")
	}
	return p, nil
}

// RequireRole ensures the caller is authenticated and holds the given role.
func RequireRole(ctx context.Context, role userdomain.Role) (*identitydomain.Principal, error) {
	p, ok := interceptors.GetPrincipal(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	if !p.HasRole(role) {
		return nil, status.Errorf(codes.PermissionDenied, "%s role required", role)
	}
	return p, nil
}
