package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxAgentID ctxKey = iota
	ctxExtension
	ctxRole
)

func WithIdentity(ctx context.Context, agentID, extension, role string) context.Context {
	ctx = context.WithValue(ctx, ctxAgentID, agentID)
	ctx = context.WithValue(ctx, ctxExtension, extension)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func AgentID(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxAgentID).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("agent_id not in context")
}

func Extension(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxExtension).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("extension not in context")
}

func Role(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxRole).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
