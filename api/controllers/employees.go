package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/api/responses"
	"github.com/sahelretail/pos-backend/api/validators"
	"github.com/sahelretail/pos-backend/internal/employees"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
)

type createEmployeeRequest struct {
	FullName           string     `json:"full_name" validate:"required"`
	Phone              string     `json:"phone" validate:"required"`
	Role               string     `json:"role" validate:"required"`
	PrimaryWarehouseID *uuid.UUID `json:"primary_warehouse_id,omitempty"`
	PIN                string     `json:"pin,omitempty"`
}

type createEmployeeResponse struct {
	Employee *employees.EmployeeDTO `json:"employee"`
	TempPIN  string                 `json:"temp_pin,omitempty"`
}

// CreateEmployee registers a staff account. The temporary PIN, when one is
// generated, appears only in this response.
func CreateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseRole(req.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		result, err := svc.Create(r.Context(), scope, employees.CreateInput{
			FullName:           req.FullName,
			Phone:              req.Phone,
			Role:               role,
			PrimaryWarehouseID: req.PrimaryWarehouseID,
			PIN:                req.PIN,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createEmployeeResponse{
			Employee: employees.FromModel(result.Employee),
			TempPIN:  result.TempPIN,
		})
	}
}

// GetEmployee returns one staff profile, admin or self only.
func GetEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.Get(r.Context(), scope, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employees.FromModel(employee))
	}
}

// ListEmployees returns the staff roster.
func ListEmployees(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roster, err := svc.List(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]*employees.EmployeeDTO, 0, len(roster))
		for i := range roster {
			out = append(out, employees.FromModel(&roster[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// DeactivateEmployee disables an account without deleting its history.
func DeactivateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), scope, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// AssignWarehouse grants an employee access to an extra warehouse.
func AssignWarehouse(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := pathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouseID, err := pathUUID(r, "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AssignWarehouse(r.Context(), scope, employeeID, warehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "assigned"})
	}
}

// UnassignWarehouse revokes a warehouse grant.
func UnassignWarehouse(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := pathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouseID, err := pathUUID(r, "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UnassignWarehouse(r.Context(), scope, employeeID, warehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unassigned"})
	}
}
