// Package index отдаёт главную страницу.
package index

import (
	"net/http"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
)

type Handler struct {
	pages web.Pages
}

func New(pages web.Pages) *Handler {
	return &Handler{pages: pages}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _ := middlewarectx.UserFromContext(r.Context())
	h.pages.Render(w, r, http.StatusOK, web.PageIndex, web.Page{Title: "CleanSMRs", User: user})
}
