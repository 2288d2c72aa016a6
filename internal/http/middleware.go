package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/logging"
)

const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"
)

// Identity resolves the caller from the X-User-ID and X-User-Role headers set
// by the fronting auth proxy. Requests without a user id are rejected before
// reaching any handler; an absent or unknown role downgrades to member.
func Identity(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(userIDHeader))
			if userID == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingIdentity)
				return
			}

			principal := application.Principal{
				UserID: userID,
				Role:   parseRole(r.Header.Get(userRoleHeader)),
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseRole(raw string) application.Role {
	switch application.Role(strings.ToLower(strings.TrimSpace(raw))) {
	case application.RoleAdmin:
		return application.RoleAdmin
	case application.RoleSuperAdmin:
		return application.RoleSuperAdmin
	default:
		return application.RoleMember
	}
}

// RequestLogger attaches a per-request logger to the context and records the
// start and completion of every request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
