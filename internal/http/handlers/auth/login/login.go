// Package login реализует страницу входа по email и паролю.
package login

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

const invalidLogin = "Please enter a correct email and password. Note that both fields may be case-sensitive."

// Request поля формы входа.
type Request struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Handler обрабатывает GET и POST /login.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	pages    web.Pages
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sessions Sessions, pages web.Pages) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		pages:    pages,
		validate: web.NewValidator(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	next := safeNext(r.URL.Query().Get("next"))
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, nil, next)
		return
	}

	var req Request
	form, err := web.ParseForm(r, &req)
	if err != nil {
		log.Error("failed to decode form", sl.Err(err))
		form.AddError("", "Invalid form submission.")
		h.render(w, r, http.StatusBadRequest, form, next)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		form.AddValidationErrors(err)
		h.render(w, r, http.StatusBadRequest, form, next)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		log.Info("login rejected")
		form.AddError("", invalidLogin)
		h.render(w, r, http.StatusBadRequest, form, next)
		return
	}
	if err != nil {
		log.Error("failed to authenticate", sl.Err(err))
		h.pages.RenderError(w, r, nil, http.StatusInternalServerError, "")
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, user.UUID); err != nil {
		log.Error("failed to start session", sl.Err(err))
		h.pages.RenderError(w, r, nil, http.StatusInternalServerError, "")
		return
	}

	log.Info("user logged in", slog.String("user_uid", user.UUID))
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, form *web.Form, next string) {
	data := ""
	if next != "/" {
		data = next
	}
	h.pages.Render(w, r, status, web.PageLogin, web.Page{Title: "Log in", Form: form, Data: data})
}

// safeNext пропускает только локальные пути, иначе "/".
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
