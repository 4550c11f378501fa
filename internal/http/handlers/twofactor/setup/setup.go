// Package setup реализует первичную настройку TOTP: QR-код, секрет и проверку первого кода.
package setup

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Request форма с кодом из приложения.
type Request struct {
	OTP string `form:"otp" validate:"required,len=6,numeric"`
}

// Handler обрабатывает GET и POST /setup-2fa.
type Handler struct {
	log      *slog.Logger
	service  Service
	pages    web.Pages
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, pages web.Pages) *Handler {
	return &Handler{log: log, service: service, pages: pages, validate: web.NewValidator()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.twofactor.setup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	existing, err := h.service.Get(r.Context(), user.UUID)
	switch {
	case err == nil && existing.Validated():
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case err != nil && !errors.Is(err, models.ErrNotFound):
		log.Error("failed to load otp record", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}

	rec, err := h.service.GetOrCreate(r.Context(), user.UUID, user.Email)
	if err != nil {
		log.Error("failed to create otp secret", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	img, err := h.service.ProvisioningImage(rec.Secret, user.Email)
	if err != nil {
		log.Error("failed to build qr image", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	page := web.Page{
		Title: "Set up two-factor authentication",
		User:  user,
		Data:  web.TwoFactorSetup{Secret: rec.Secret, QRImage: template.URL(img)},
	}

	if r.Method != http.MethodPost {
		h.pages.Render(w, r, http.StatusOK, web.PageSetup2FA, page)
		return
	}

	var req Request
	form, err := web.ParseForm(r, &req)
	page.Form = form
	if err != nil {
		form.AddError("otp", "Invalid OTP code.")
		h.pages.Render(w, r, http.StatusBadRequest, web.PageSetup2FA, page)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		form.AddValidationErrors(err)
		h.pages.Render(w, r, http.StatusBadRequest, web.PageSetup2FA, page)
		return
	}

	valid, err := h.service.Validate(r.Context(), rec, req.OTP)
	if err != nil {
		log.Error("failed to validate otp", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	if !valid {
		form.AddError("otp", "Invalid OTP code.")
		h.pages.Render(w, r, http.StatusBadRequest, web.PageSetup2FA, page)
		return
	}

	log.Info("two factor setup complete", slog.String("user_uid", user.UUID))
	h.pages.RenderMessage(w, r, user, web.Message{
		Heading:  "2FA Setup Complete",
		Text:     "Two-factor authentication has been successfully set up.",
		Link:     "/",
		LinkText: "Return to the homepage",
	})
}
