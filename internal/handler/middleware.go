package handler

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const associationCtxKey contextKey = "association_id"

// AssociationHeader carries the caller's tenant, set by the upstream
// identity layer. The core trusts it; authentication is not performed
// here.
const AssociationHeader = "X-Association-ID"

// RequireAssociation resolves the tenant from the request header and puts
// it on the context. Requests without a usable tenant never reach a
// handler.
func RequireAssociation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.Header.Get(AssociationHeader))
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing or invalid " + AssociationHeader})
			return
		}
		ctx := context.WithValue(r.Context(), associationCtxKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func associationID(r *http.Request) int {
	id, _ := r.Context().Value(associationCtxKey).(int)
	return id
}
