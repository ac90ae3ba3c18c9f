package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/mergington/activities/frontend/internal/app"
	"github.com/mergington/activities/frontend/internal/dom"
	"github.com/mergington/activities/frontend/internal/view"
	internal_errors "github.com/mergington/activities/shared/errors"
	"github.com/mergington/activities/shared/logger"
	"github.com/mergington/activities/shared/utils"
)

type removeForm struct {
	Remove string `validate:"required"`
}

// SignupPostHandler replays a signup form post as a submit event. An action
// runs to completion even when the browser goes away, as it would in an open
// tab.
func (h *Handler) SignupPostHandler(w http.ResponseWriter, r *http.Request) {
	client, err := h.client(w, r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	in := app.FormInput{
		Activity: r.PostFormValue("activity"),
		Email:    r.PostFormValue("email"),
	}
	err = client.Submit(context.WithoutCancel(r.Context()), in)
	switch {
	case errors.Is(err, dom.ErrInvalidForm):
		logger.Log.Info("signup form rejected", "error", err)
		h.renderPage(w, r, client, http.StatusBadRequest)
	case err != nil:
		utils.WriteErrorAndStatusCode(w, err)
	default:
		redirectHome(w, r)
	}
}

// RemovePostHandler replays a delete button press as a click event.
func (h *Handler) RemovePostHandler(w http.ResponseWriter, r *http.Request) {
	form := removeForm{Remove: r.PostFormValue(view.RemoveField)}
	if err := utils.Validate(&form); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	activity, email, err := view.DecodeRemoval(form.Remove)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{
			Message:    "Invalid removal request",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	client, err := h.client(w, r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err = client.Click(context.WithoutCancel(r.Context()), activity, email)
	switch {
	case errors.Is(err, app.ErrUnknownParticipant):
		// The page was stale; the redirect shows the current one.
		logger.Log.Info("removal for participant not on page", "activity", activity, "email", email)
		redirectHome(w, r)
	case err != nil:
		utils.WriteErrorAndStatusCode(w, err)
	default:
		redirectHome(w, r)
	}
}
