package interceptors

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"biblio/backend/internal/access"
	identitydomain "biblio/backend/internal/identity/domain"
	platformdomain "biblio/backend/internal/platformsettings/domain"
	userdomain "biblio/backend/internal/user/domain"
)

// mockSettingsRepo returns fixed maintenance settings.
type mockSettingsRepo struct {
	settings *platformdomain.MaintenanceSettings
	err      error
}

func (m *mockSettingsRepo) GetMaintenanceSettings(_ context.Context) (*platformdomain.MaintenanceSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsRepo) SetSetting(_ context.Context, _, _ string) error { return nil }

func TestMaintenanceUnary_OffPassesThrough(t *testing.T) {
	repo := &mockSettingsRepo{settings: &platformdomain.MaintenanceSettings{}}
	ic := MaintenanceUnary(repo, access.NewOPAEvaluator())
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.user.v1.UserService/GetUser"}

	if _, err := ic(context.Background(), nil, info, passThrough(nil)); err != nil {
		t.Fatalf("maintenance off: %v", err)
	}
}

func TestMaintenanceUnary_BlocksMembers(t *testing.T) {
	repo := &mockSettingsRepo{settings: &platformdomain.MaintenanceSettings{
		MaintenanceMode: true,
		Notice:          "back soon",
	}}
	ic := MaintenanceUnary(repo, access.NewOPAEvaluator())
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.user.v1.UserService/GetUser"}

	ctx := WithPrincipal(context.Background(), &identitydomain.Principal{
		UserID: "u1",
		Roles:  []userdomain.Role{userdomain.RoleMember},
	})
	_, err := ic(ctx, nil, info, passThrough(nil))
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unavailable {
		t.Fatalf("err = %v, want Unavailable", err)
	}
	if st.Message() != "back soon" {
		t.Errorf("message = %q, want operator notice", st.Message())
	}
}

func TestMaintenanceUnary_AdmitsAdmins(t *testing.T) {
	repo := &mockSettingsRepo{settings: &platformdomain.MaintenanceSettings{MaintenanceMode: true}}
	ic := MaintenanceUnary(repo, access.NewOPAEvaluator())
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.user.v1.UserService/GetUser"}

	ctx := WithPrincipal(context.Background(), &identitydomain.Principal{
		UserID: "a1",
		Roles:  []userdomain.Role{userdomain.RoleAdmin},
	})
	if _, err := ic(ctx, nil, info, passThrough(nil)); err != nil {
		t.Fatalf("admin during maintenance: %v", err)
	}
}

func TestMaintenanceUnary_LoginStaysReachable(t *testing.T) {
	repo := &mockSettingsRepo{settings: &platformdomain.MaintenanceSettings{MaintenanceMode: true}}
	ic := MaintenanceUnary(repo, access.NewOPAEvaluator())
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.auth.v1.AuthService/Login"}

	if _, err := ic(context.Background(), nil, info, passThrough(nil)); err != nil {
		t.Fatalf("login during maintenance: %v", err)
	}
}

func TestMaintenanceUnary_SettingsFailureFailsOpen(t *testing.T) {
	repo := &mockSettingsRepo{err: errors.New("db down")}
	ic := MaintenanceUnary(repo, access.NewOPAEvaluator())
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.user.v1.UserService/GetUser"}

	if _, err := ic(context.Background(), nil, info, passThrough(nil)); err != nil {
		t.Fatalf("settings failure must fail open: %v", err)
	}
}
