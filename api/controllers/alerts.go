package controllers

import (
	"net/http"
	"strings"

	"github.com/sahelretail/pos-backend/api/responses"
	"github.com/sahelretail/pos-backend/api/validators"
	"github.com/sahelretail/pos-backend/internal/alerts"
	"github.com/sahelretail/pos-backend/pkg/enums"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/logger"
)

// ListAlerts returns the admin alert feed with optional filters.
func ListAlerts(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
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

		input := alerts.ListInput{Pagination: params}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			alertType, err := enums.ParseAlertType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid alert type"))
				return
			}
			input.Filter.Type = &alertType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("severity")); raw != "" {
			severity, err := enums.ParseAlertSeverity(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid severity"))
				return
			}
			input.Filter.Severity = &severity
		}
		if input.Filter.WarehouseID, err = validators.ParseQueryUUID(r, "warehouse_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Filter.UnreadOnly, err = validators.ParseQueryBool(r, "unread_only"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.List(r.Context(), scope, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page(items, next))
	}
}

// MarkAlertRead marks a single alert as read.
func MarkAlertRead(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "alertID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alert, err := svc.MarkRead(r.Context(), scope, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alert)
	}
}

// MarkAllAlertsRead marks every unread alert as read.
func MarkAllAlertsRead(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}

// UnreadAlertCount returns the unread alert counter for the badge.
func UnreadAlertCount(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.UnreadCount(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
