// Package audit writes the security-relevant event trail: logins, approvals,
// deactivations, deletions. Entries go through the shared structured logger
// with a fixed "audit" marker so they can be filtered downstream.
package audit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"societyhub.org/internal/identity"
	"societyhub.org/internal/obs"
)

type ctxKey struct{}

// WithRequestID attaches the request identifier for audit correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// Record writes one audit entry enriched with the request id and the resolved
// caller, when either is present on the context.
func Record(ctx context.Context, event string, fields ...zap.Field) {
	event = strings.TrimSpace(event)
	if event == "" {
		return
	}
	entry := []zap.Field{zap.String("type", "audit")}
	if rid := requestID(ctx); rid != "" {
		entry = append(entry, zap.String("request_id", rid))
	}
	if actor, ok := identity.FromContext(ctx); ok {
		entry = append(entry, zap.String("actor_id", actor.ID), zap.String("actor_role", string(actor.Role)))
	}
	entry = append(entry, fields...)
	obs.Logger().Info(event, entry...)
}
