// Package dispatch carries out the two user mutations: signing a participant
// up and withdrawing one.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mergington/activities/frontend/internal/status"
	"github.com/mergington/activities/shared/api"
	"github.com/mergington/activities/shared/domain"
	internal_errors "github.com/mergington/activities/shared/errors"
	"github.com/mergington/activities/shared/logger"
)

const (
	SignupFailed        = "An error occurred"
	SignupUnreachable   = "Failed to sign up. Please try again."
	WithdrawFailed      = "Failed to unregister participant"
	WithdrawUnreachable = "Failed to unregister participant. Please try again."
)

type ActivityAPI interface {
	Signup(ctx context.Context, activity domain.ActivityName, email domain.Email) (api.MessageResponse, error)
	Unregister(ctx context.Context, activity domain.ActivityName, email domain.Email) (api.MessageResponse, error)
}

// UI is the part of the page a mutation touches. Its methods hop onto the
// event loop themselves.
type UI interface {
	ShowStatus(ctx context.Context, text string, kind status.Kind)
	ResetSignupForm(ctx context.Context)
	// HideStatusLater schedules one hide of the status message.
	HideStatusLater()
	// Refresh runs a full fetch-and-render cycle.
	Refresh(ctx context.Context)
}

type Dispatcher struct {
	api ActivityAPI
	ui  UI
	log *slog.Logger
}

func New(client ActivityAPI, ui UI) *Dispatcher {
	return &Dispatcher{api: client, ui: ui, log: logger.For("dispatch")}
}

// mutation describes the differences between signup and withdraw.
type mutation struct {
	name        string
	call        func(ctx context.Context, activity domain.ActivityName, email domain.Email) (api.MessageResponse, error)
	failed      string
	unreachable string
	onSuccess   func(ctx context.Context)
}

// Signup registers email into activity and reconciles the page. It never
// returns an error: every outcome ends up in the status message.
func (d *Dispatcher) Signup(ctx context.Context, activity domain.ActivityName, email domain.Email) {
	d.run(ctx, mutation{
		name:        "signup",
		call:        d.api.Signup,
		failed:      SignupFailed,
		unreachable: SignupUnreachable,
		onSuccess:   d.ui.ResetSignupForm,
	}, activity, email)
}

// Withdraw removes email from activity and reconciles the page.
func (d *Dispatcher) Withdraw(ctx context.Context, activity domain.ActivityName, email domain.Email) {
	d.run(ctx, mutation{
		name:        "withdraw",
		call:        d.api.Unregister,
		failed:      WithdrawFailed,
		unreachable: WithdrawUnreachable,
	}, activity, email)
}

func (d *Dispatcher) run(ctx context.Context, m mutation, activity domain.ActivityName, email domain.Email) {
	log := d.log.With("action", m.name, "action_id", uuid.NewString(), "activity", activity)

	resp, err := m.call(ctx, activity, email)
	switch se, answered := internal_errors.AsStatusError(err); {
	case err == nil:
		log.Info("mutation succeeded")
		d.ui.ShowStatus(ctx, resp.Message, status.KindSuccess)
		if m.onSuccess != nil {
			m.onSuccess(ctx)
		}
		d.ui.Refresh(ctx)
	case answered:
		log.Warn("mutation rejected", "status", se.StatusCode, "detail", se.Message)
		text := se.Message
		if text == "" {
			text = m.failed
		}
		d.ui.ShowStatus(ctx, text, status.KindError)
		d.ui.Refresh(ctx)
	default:
		log.Error("mutation failed", "error", err)
		d.ui.ShowStatus(ctx, m.unreachable, status.KindError)
	}
	d.ui.HideStatusLater()
}
