// Package register реализует страницу регистрации.
package register

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	services "github.com/magabrotheeeer/cleansmrs-shop/internal/services/auth"
)

// Request поля формы регистрации.
type Request struct {
	FirstName  string `form:"first_name" validate:"required,max=150"`
	LastName   string `form:"last_name" validate:"required,max=150"`
	Email      string `form:"email" validate:"required,email,max=254"`
	Address    string `form:"address" validate:"max=255"`
	City       string `form:"city" validate:"max=100"`
	Country    string `form:"country" validate:"max=100"`
	PostalCode string `form:"postal_code" validate:"max=20"`
	Password1  string `form:"password1" validate:"required,min=8,max=128"`
	Password2  string `form:"password2" validate:"required,eqfield=Password1"`
}

// Handler обрабатывает GET и POST /register.
type Handler struct {
	log      *slog.Logger
	service  Service
	pages    web.Pages
	baseURL  string
	validate *validator.Validate
}

// New создает новый экземпляр Handler. baseURL попадает в ссылку активации.
func New(log *slog.Logger, service Service, pages web.Pages, baseURL string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		pages:    pages,
		baseURL:  baseURL,
		validate: web.NewValidator(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, nil)
		return
	}

	var req Request
	form, err := web.ParseForm(r, &req)
	if err != nil {
		log.Error("failed to decode form", sl.Err(err))
		form.AddError("", "Invalid form submission.")
		h.render(w, r, http.StatusBadRequest, form)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		form.AddValidationErrors(err)
		h.render(w, r, http.StatusBadRequest, form)
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Email:      req.Email,
		Password:   req.Password1,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		City:       req.City,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		BaseURL:    h.baseURL,
	})
	if errors.Is(err, models.ErrEmailTaken) {
		form.AddError("email", "Email is already in use")
		h.render(w, r, http.StatusBadRequest, form)
		return
	}
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		h.pages.RenderError(w, r, nil, http.StatusInternalServerError, "")
		return
	}

	log.Info("user registered", slog.String("user_uid", user.UUID))
	h.pages.RenderMessage(w, r, nil, web.Message{
		Heading:  "Registration Successful",
		Text:     "Your account has been successfully created. Please check your email to activate your account.",
		Link:     "/login",
		LinkText: "Log in",
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, form *web.Form) {
	h.pages.Render(w, r, status, web.PageRegister, web.Page{
		Title: "Register",
		Form:  form,
		Data:  web.RegisterFields(),
	})
}
