package interceptors

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	identitydomain "biblio/backend/internal/identity/domain"
	userdomain "biblio/backend/internal/user/domain"
)

// mockAuthenticator resolves one fixed token.
type mockAuthenticator struct {
	token     string
	principal *identitydomain.Principal
}

func (m *mockAuthenticator) Authenticate(_ context.Context, token string) (*identitydomain.Principal, error) {
	if token == m.token && m.principal != nil {
		return m.principal, nil
	}
	return nil, errors.New("bad token")
}

func bearerCtx(token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(context.Background(), md)
}

func testPrincipal() *identitydomain.Principal {
	return &identitydomain.Principal{
		UserID:    "user-1",
		SessionID: "session-1",
		Roles:     []userdomain.Role{userdomain.RoleMember},
	}
}

func passThrough(captured *context.Context) grpc.UnaryHandler {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		if captured != nil {
			*captured = ctx
		}
		return "ok", nil
	}
}

func TestAuthUnary_ValidToken(t *testing.T) {
	auth := &mockAuthenticator{token: "good", principal: testPrincipal()}
	ic := AuthUnary(auth, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.user.v1.UserService/GetUser"}

	var seen context.Context
	resp, err := ic(bearerCtx("good"), nil, info, passThrough(&seen))
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "ok" {
		t.Errorf("resp = %v", resp)
	}
	p, ok := GetPrincipal(seen)
	if !ok || p.UserID != "user-1" {
		t.Errorf("principal in handler ctx = %v, %v", p, ok)
	}
	if sid, _ := GetSessionID(seen); sid != "session-1" {
		t.Errorf("session id = %q", sid)
	}
}

func TestAuthUnary_MissingToken(t *testing.T) {
	auth := &mockAuthenticator{}
	ic := AuthUnary(auth, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.user.v1.UserService/GetUser"}

	_, err := ic(context.Background(), nil, info, passThrough(nil))
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
}

func TestAuthUnary_BadToken(t *testing.T) {
	auth := &mockAuthenticator{token: "good", principal: testPrincipal()}
	ic := AuthUnary(auth, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.user.v1.UserService/GetUser"}

	_, err := ic(bearerCtx("forged"), nil, info, passThrough(nil))
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
}

func TestAuthUnary_PublicMethodWithoutToken(t *testing.T) {
	auth := &mockAuthenticator{}
	public := map[string]bool{"/biblio.auth.v1.AuthService/Login": true}
	ic := AuthUnary(auth, public)
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.auth.v1.AuthService/Login"}

	var seen context.Context
	if _, err := ic(context.Background(), nil, info, passThrough(&seen)); err != nil {
		t.Fatalf("public method: %v", err)
	}
	if _, ok := GetPrincipal(seen); ok {
		t.Error("no principal expected on anonymous public call")
	}
}

func TestAuthUnary_PublicMethodIgnoresBadToken(t *testing.T) {
	auth := &mockAuthenticator{token: "good", principal: testPrincipal()}
	public := map[string]bool{"/biblio.auth.v1.AuthService/Login": true}
	ic := AuthUnary(auth, public)
	info := &grpc.UnaryServerInfo{FullMethod: "/biblio.auth.v1.AuthService/Login"}

	if _, err := ic(bearerCtx("stale"), nil, info, passThrough(nil)); err != nil {
		t.Fatalf("public method with stale token: %v", err)
	}
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Basic abc", ""},
		{"", ""},
	}
	for _, c := range cases {
		ctx := context.Background()
		if c.header != "" {
			ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", c.header))
		}
		if got := extractBearer(ctx); got != c.want {
			t.Errorf("extractBearer(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}
