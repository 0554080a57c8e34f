package middleware

import (
	"net/http"

	"github.com/sahelretail/pos-backend/api/responses"
	"github.com/sahelretail/pos-backend/internal/access"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/enums"
	"github.com/sahelretail/pos-backend/pkg/logger"
)

// RequirePermission gates a route on the boot-loaded role grant table.
func RequirePermission(table *access.PermissionTable, permission string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.Role(RoleFromContext(r.Context()))
			if !table.Allows(role, permission) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "permission required").WithDetails(map[string]any{"permission": permission}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
