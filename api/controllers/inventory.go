package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/api/responses"
	"github.com/sahelretail/pos-backend/api/validators"
	"github.com/sahelretail/pos-backend/internal/inventory"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
)

type adjustStockRequest struct {
	ProductID   uuid.UUID  `json:"product_id" validate:"required"`
	WarehouseID uuid.UUID  `json:"warehouse_id" validate:"required"`
	Type        string     `json:"type" validate:"required"`
	Quantity    int        `json:"quantity" validate:"required"`
	Reason      *string    `json:"reason,omitempty"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
}

type setLevelsRequest struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	WarehouseID   uuid.UUID `json:"warehouse_id" validate:"required"`
	MinStockLevel int       `json:"min_stock_level" validate:"min=0"`
	MaxStockLevel *int      `json:"max_stock_level,omitempty"`
}

// AdjustStock applies a signed quantity delta with a ledger entry.
func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movementType, err := enums.ParseStockMovementType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		result, err := svc.AdjustStock(r.Context(), scope, inventory.AdjustStockInput{
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Type:        movementType,
			Quantity:    req.Quantity,
			Reason:      req.Reason,
			ReferenceID: req.ReferenceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SetStockLevels updates the reorder thresholds of one inventory row.
func SetStockLevels(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setLevelsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.SetStockLevels(r.Context(), scope, inventory.SetLevelsInput{
			ProductID:     req.ProductID,
			WarehouseID:   req.WarehouseID,
			MinStockLevel: req.MinStockLevel,
			MaxStockLevel: req.MaxStockLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// ListStock returns the stock of the selected warehouse, one row per active
// product.
func ListStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListStock(r.Context(), scope, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page(rows, next))
	}
}

// GetLowStock lists rows at or under their reorder threshold.
func GetLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.GetLowStock(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rows == nil {
			rows = []inventory.StockRowWithWarehouse{}
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListMovements returns the stock ledger with optional filters.
func ListMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventory.ListMovementsInput{Pagination: params}
		if input.WarehouseID, err = validators.ParseQueryUUID(r, "warehouse_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ProductID, err = validators.ParseQueryUUID(r, "product_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			movementType, err := enums.ParseStockMovementType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
				return
			}
			input.Type = &movementType
		}
		if input.From, err = validators.ParseQueryTime(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.To, err = validators.ParseQueryTime(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, next, err := svc.ListMovements(r.Context(), scope, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page(movements, next))
	}
}
