// Package product отдаёт страницу товара с описанием в markdown.
package product

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
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
	const op = "handlers.catalog.product"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	user, _ := middlewarectx.UserFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.pages.RenderError(w, r, user, http.StatusNotFound, "")
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		h.pages.RenderError(w, r, user, http.StatusNotFound, "")
		return
	}
	if err != nil {
		log.Error("failed to get product", slog.Int64("product_id", id), sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	h.pages.Render(w, r, http.StatusOK, web.PageProduct, web.Page{Title: p.Name, User: user, Data: p})
}
