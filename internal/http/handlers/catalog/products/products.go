// Package products отдаёт список товаров.
package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
	pages   web.Pages
}

func New(log *slog.Logger, service Service, pages web.Pages) *Handler {
	return &Handler{log: log, service: service, pages: pages}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.products"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	user, _ := middlewarectx.UserFromContext(r.Context())

	list, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list products", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	h.pages.Render(w, r, http.StatusOK, web.PageProducts, web.Page{Title: "Products", User: user, Data: list})
}
