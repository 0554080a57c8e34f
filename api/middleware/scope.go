package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/api/responses"
	"github.com/sahelretail/pos-backend/internal/access"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
)

const warehouseHeader = "X-Warehouse-Id"

// Scope resolves the actor's warehouse scope once per request. The optional
// X-Warehouse-Id header selects a warehouse; the resolver validates it
// against the actor's primary and assigned warehouses.
func Scope(resolver access.Resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			employeeRaw := EmployeeIDFromContext(r.Context())
			if employeeRaw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			employeeID, err := uuid.Parse(employeeRaw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid employee id"))
				return
			}

			var selected *uuid.UUID
			if raw := strings.TrimSpace(r.Header.Get(warehouseHeader)); raw != "" {
				warehouseID, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid warehouse header"))
					return
				}
				selected = &warehouseID
			}

			scope, err := resolver.Resolve(r.Context(), employeeID, selected)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithScope(r.Context(), scope)
			if logg != nil && scope.SelectedWarehouseID != nil {
				ctx = logg.WithWarehouseID(ctx, scope.SelectedWarehouseID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
