package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sahelretail/pos-backend/api/middleware"
	"github.com/sahelretail/pos-backend/api/validators"
	"github.com/sahelretail/pos-backend/internal/access"
	pkgerrors "github.com/sahelretail/pos-backend/pkg/errors"
	"github.com/sahelretail/pos-backend/pkg/pagination"
	"github.com/sahelretail/pos-backend/pkg/types"
)

func scopeFromRequest(r *http.Request) (*access.ScopeContext, error) {
	scope := middleware.ScopeFromContext(r.Context())
	if scope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing scope")
	}
	return scope, nil
}

func paginationFromRequest(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

func page[T any](items []T, next *pagination.Cursor) types.Page[T] {
	if items == nil {
		items = []T{}
	}
	out := types.Page[T]{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		out.NextCursor = &encoded
	}
	return out
}
