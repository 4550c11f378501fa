// Package verify реализует ввод TOTP-кода при каждом входе.
package verify

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

const invalidCode = "Invalid OTP code."

// Request форма с кодом.
type Request struct {
	OTP string `form:"otp"`
}

// Handler обрабатывает GET и POST /verify-otp.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	pages    web.Pages
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sessions Sessions, pages web.Pages) *Handler {
	return &Handler{log: log, service: service, sessions: sessions, pages: pages}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.twofactor.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	sess, hasSession := session.FromContext(r.Context())
	if !ok || !hasSession {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	page := web.Page{Title: "Two-factor authentication", User: user}

	if r.Method != http.MethodPost {
		h.pages.Render(w, r, http.StatusOK, web.PageVerifyOTP, page)
		return
	}

	var req Request
	form, err := web.ParseForm(r, &req)
	page.Form = form
	if err != nil {
		form.AddError("otp", invalidCode)
		h.pages.Render(w, r, http.StatusBadRequest, web.PageVerifyOTP, page)
		return
	}

	rec, err := h.service.Get(r.Context(), user.UUID)
	if errors.Is(err, models.ErrNotFound) {
		http.Redirect(w, r, middlewarectx.PathSetup2FA, http.StatusFound)
		return
	}
	if err != nil {
		log.Error("failed to load otp record", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}

	valid, err := h.service.Validate(r.Context(), rec, req.OTP)
	if err != nil {
		log.Error("failed to validate otp", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	if !valid {
		log.Info("otp rejected", slog.String("user_uid", user.UUID))
		form.AddError("otp", invalidCode)
		h.pages.Render(w, r, http.StatusBadRequest, web.PageVerifyOTP, page)
		return
	}

	if err := h.sessions.MarkOTPVerified(r.Context(), sess); err != nil {
		log.Error("failed to mark session verified", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
