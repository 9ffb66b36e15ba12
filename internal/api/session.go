package api

import (
	"context"
	"fmt"
	"nerisdash/pkg/auth"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/serrors"
	"net/http"

	"go.uber.org/zap"
)

type authorizedKey struct{}

// authorized returns the NERIS IDs the session of ctx may read.
func authorized(ctx context.Context) []any {
	ids, _ := ctx.Value(authorizedKey{}).([]any)

	return ids
}

// authorizedIDs normalises a cached permission value to a list of IDs. A
// single ID is a list of one.
func authorizedIDs(v any) []any {
	switch ids := v.(type) {
	case []any:
		return ids
	case []string:
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id
		}

		return out
	case string:
		if ids == "" {
			return nil
		}

		return []any{ids}
	}

	return nil
}

// withSession resolves the permissions of the caller before next runs. The
// session cookie is reissued whenever the permissions were resolved anew.
// Callers without an embed token or a live session get 401, callers without
// a single readable department get 403.
func withSession(m *auth.Manager, sessions *auth.Sessions, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sid := sessions.FromRequest(r)
		res, err := m.PermissionsAndCache(ctx, r, sid)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("could not resolve permissions: %w", err))

			return
		}
		if res.SessionID != sid {
			if err := sessions.SetCookie(w, res.SessionID); err != nil {
				writeError(ctx, w, err)

				return
			}
		}

		ids := authorizedIDs(res.Value)
		if len(ids) == 0 {
			writeError(ctx, w, serrors.With(serrors.ErrForbidden, "no departments authorized"))

			return
		}

		ctx = context.WithValue(ctx, authorizedKey{}, ids)
		ctx = logger.WithFields(ctx, zap.Int("authorized_departments", len(ids)), zap.Bool("session_cached", res.Cached))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
