package httpx

import (
	"context"
	"net/http"
)

const RoleAdmin = "ADMIN"

type contextKey int

const (
	principalKey contextKey = iota
	requestIDKey
	accessRecordKey
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject string
	Role    string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// accessRecord lets inner middleware report back to the access log.
type accessRecord struct {
	subject string
}

func PrincipalFrom(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}

// UserIDFrom returns the subject of the bearer token, or "".
func UserIDFrom(r *http.Request) string {
	p, _ := PrincipalFrom(r)
	return p.Subject
}

// ContextWithUser stores the caller and, when an access log wraps the request,
// records the subject for it.
func ContextWithUser(ctx context.Context, subject, role string) context.Context {
	if rec, ok := ctx.Value(accessRecordKey).(*accessRecord); ok {
		rec.subject = subject
	}
	return context.WithValue(ctx, principalKey, Principal{Subject: subject, Role: role})
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
