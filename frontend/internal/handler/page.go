package handler

import (
	"net/http"

	"github.com/mergington/activities/shared/utils"
)

// PageGetHandler reloads the session document and serves it. The load right
// after a form post reuses the render of that action.
func (h *Handler) PageGetHandler(w http.ResponseWriter, r *http.Request) {
	client, err := h.client(w, r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := client.Reload(r.Context()); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.renderPage(w, r, client, http.StatusOK)
}
