package middleware

import (
	"net/http"
	"strings"

	"github.com/smartwear/pos-backend/api/responses"
	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/logger"
)

const (
	ActorRoleHeader  = "X-Actor-Role"
	TerminalIDHeader = "X-Terminal-Id"
)

// Actor reads the role and terminal forwarded by the identity proxy and seeds
// the request context with them. Requests without a known role are rejected.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(ActorRoleHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "actor role missing"))
				return
			}
			role, err := enums.ParseMemberRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown actor role"))
				return
			}

			ctx := WithRole(r.Context(), role)
			terminalID := strings.TrimSpace(r.Header.Get(TerminalIDHeader))
			if terminalID != "" {
				ctx = WithTerminalID(ctx, terminalID)
			}

			if logg != nil {
				ctx = logg.WithActorRole(ctx, string(role))
				if terminalID != "" {
					ctx = logg.WithTerminalID(ctx, terminalID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
