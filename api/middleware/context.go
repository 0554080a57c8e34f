package middleware

import (
	"context"

	"github.com/sahelretail/pos-backend/internal/access"
)

type contextKey string

const (
	ctxEmployeeID contextKey = "employee_id"
	ctxRole       contextKey = "actor_role"
	ctxAccessID   contextKey = "access_id"
	ctxScope      contextKey = "scope"
)

func EmployeeIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmployeeID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ScopeFromContext returns the warehouse scope resolved for this request, or
// nil when the scope middleware did not run.
func ScopeFromContext(ctx context.Context) *access.ScopeContext {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxScope).(*access.ScopeContext); ok {
		return v
	}
	return nil
}

// WithScope injects a resolved scope; used by the scope middleware and tests.
func WithScope(ctx context.Context, scope *access.ScopeContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxScope, scope)
}

// WithEmployeeID injects the employee identifier into the context.
func WithEmployeeID(ctx context.Context, employeeID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxEmployeeID, employeeID)
}
