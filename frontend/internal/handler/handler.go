package handler

import (
	"context"
	"time"

	"github.com/mergington/activities/frontend/internal/session"
)

// HealthChecker is the dependency the readiness probe pings.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	sessions      *session.Store
	health        HealthChecker
	secureCookies bool
	sessionTTL    time.Duration
}

func New(sessions *session.Store, health HealthChecker, secureCookies bool, sessionTTL time.Duration) *Handler {
	return &Handler{
		sessions:      sessions,
		health:        health,
		secureCookies: secureCookies,
		sessionTTL:    sessionTTL,
	}
}
