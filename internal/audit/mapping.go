package audit

import "strings"

// ActionResource holds action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// Auth method overrides: audit as login, logout, token_refreshed on resource "session".
const (
	authLogin   = "/biblio.auth.v1.AuthService/Login"
	authLogout  = "/biblio.auth.v1.AuthService/Logout"
	authRefresh = "/biblio.auth.v1.AuthService/Refresh"
)

// ParseFullMethod returns action and resource for a gRPC full method (e.g. /biblio.user.v1.UserService/GetUser).
// Action is a verb: get, list, create, update, delete, or a lowercase method name for others.
// Resource is derived from the service name (e.g. UserService -> user).
// AuthService Login/Logout/Refresh are mapped to login, logout, token_refreshed on resource "session".
func ParseFullMethod(fullMethod string) ActionResource {
	switch fullMethod {
	case authLogin:
		return ActionResource{Action: "login", Resource: "session"}
	case authLogout:
		return ActionResource{Action: "logout", Resource: "session"}
	case authRefresh:
		return ActionResource{Action: "token_refreshed", Resource: "session"}
	}
	// fullMethod format: /biblio.package.v1.ServiceName/MethodName
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	beforeSlash := fullMethod[:slash]
	dot := strings.LastIndex(beforeSlash, ".")
	if dot < 0 {
		return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
	}
	serviceName := beforeSlash[dot+1:]
	resource := serviceToResource(serviceName)
	action := methodToAction(method)
	return ActionResource{Action: action, Resource: resource}
}

func serviceToResource(serviceName string) string {
	// UserService -> user, CredentialService -> credential
	s := strings.TrimSuffix(serviceName, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[0:1]) + s[1:]
}

func methodToAction(method string) string {
	switch {
	case strings.HasPrefix(method, "Get") && method != "Get":
		return "get"
	case strings.HasPrefix(method, "List"):
		return "list"
	case strings.HasPrefix(method, "Create"):
		return "create"
	case strings.HasPrefix(method, "Update"):
		return "update"
	case strings.HasPrefix(method, "Delete"):
		return "delete"
	case strings.HasPrefix(method, "Request"):
		return "request"
	case strings.HasPrefix(method, "Confirm"):
		return "confirm"
	case strings.HasPrefix(method, "Register"):
		return "register"
	case strings.HasPrefix(method, "Reset"):
		return "reset"
	case strings.HasPrefix(method, "Revoke"):
		return "revoke"
	default:
		return strings.ToLower(method)
	}
}
