package handler

import (
	"bytes"
	"net/http"

	"github.com/mergington/activities/frontend/internal/app"
	"github.com/mergington/activities/frontend/internal/middleware"
	"github.com/mergington/activities/frontend/internal/session"
	"github.com/mergington/activities/shared/logger"
	"github.com/mergington/activities/shared/utils"
)

// client returns the document of the caller's session, starting one when the
// browser has none yet.
func (h *Handler) client(w http.ResponseWriter, r *http.Request) (*app.Client, error) {
	id, client, created, err := h.sessions.Resolve(r.Context(), session.FromRequest(r))
	if err != nil {
		return nil, err
	}
	if created {
		session.SetCookie(w, id, h.sessionTTL, h.secureCookies)
	}
	return client, nil
}

// renderPage serves the current serialization of the session document.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, client *app.Client, status int) {
	ctx := r.Context()
	if err := client.SetCSRFToken(ctx, middleware.GetCSRFTokenFromContext(r)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var buf bytes.Buffer
	if err := client.Render(ctx, &buf); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Log.Debug("writing page failed", "error", err)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
