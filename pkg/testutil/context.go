package testutil

import (
	"net/http"

	id "cadastro/pkg/domain"
	"cadastro/pkg/requestcontext"
)

// WithAuth puts the caller's user and session IDs in the request context,
// as RequireAuth does for a valid bearer token.
func WithAuth(req *http.Request, userID id.UserID, sessionID id.SessionID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	return req.WithContext(ctx)
}
