package setup

import (
	"context"
	"time"

	"github.com/mergington/activities/frontend/internal/apiclient"
	"github.com/mergington/activities/frontend/internal/app"
	"github.com/mergington/activities/frontend/internal/handler"
	"github.com/mergington/activities/frontend/internal/session"
	"github.com/mergington/activities/frontend/internal/status"
	"github.com/mergington/activities/shared/config"
	"github.com/mergington/activities/shared/logger"
	"github.com/mergington/activities/shared/middleware/ratelimiter"
)

const rateLimitExpiration = 10 * time.Minute

type Dependencies struct {
	Config        *config.Config
	Handler       *handler.Handler
	Sessions      *session.Store
	PageLimiter   *ratelimiter.Limiter
	EventLimiter  *ratelimiter.Limiter
	GlobalLimiter *ratelimiter.Limiter
	CancelFunc    context.CancelFunc
}

// SetupDependencies wires every component from cfg and starts the background
// session sweeper. Cleanup releases what it started.
func SetupDependencies(cfg *config.Config) *Dependencies {
	ctx, cancel := context.WithCancel(context.Background())

	apiClient := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)

	sessions := session.NewStore(func(ctx context.Context) (*app.Client, error) {
		client := app.New(apiClient, app.Options{
			Clock:     status.SystemClock{},
			HideAfter: cfg.Status.HideAfter,
		})
		if err := client.Start(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}, cfg.Session.IdleTTL, cfg.Session.MaxSessions)
	sessions.StartBackgroundSweep(ctx, cfg.Session.SweepInterval)

	deps := &Dependencies{
		Config:        cfg,
		Handler:       handler.New(sessions, apiClient, cfg.Server.SecureCookies, cfg.Session.IdleTTL),
		Sessions:      sessions,
		PageLimiter:   ratelimiter.New(cfg.RateLimit.PagesPerSecond, cfg.RateLimit.PagesBurst, rateLimitExpiration),
		EventLimiter:  ratelimiter.New(cfg.RateLimit.EventsPerSecond, cfg.RateLimit.EventsBurst, rateLimitExpiration),
		GlobalLimiter: ratelimiter.New(cfg.RateLimit.GlobalPerSecond, cfg.RateLimit.GlobalPerSecond, rateLimitExpiration),
		CancelFunc:    cancel,
	}

	logger.Log.Info("dependencies ready",
		"component", "setup",
		"api", cfg.API.BaseURL,
		"hide_after", cfg.Status.HideAfter,
		"session_idle_ttl", cfg.Session.IdleTTL,
		"max_sessions", cfg.Session.MaxSessions)
	return deps
}

// Cleanup stops the sweeper, the limiters and every session.
func (d *Dependencies) Cleanup() {
	d.CancelFunc()
	d.PageLimiter.Stop()
	d.EventLimiter.Stop()
	d.GlobalLimiter.Stop()
	d.Sessions.Close()
}
