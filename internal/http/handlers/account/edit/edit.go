// Package edit реализует редактирование профиля.
package edit

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Request редактируемые поля. Email и пароль здесь не меняются.
type Request struct {
	FirstName  string `form:"first_name" validate:"required,max=150"`
	LastName   string `form:"last_name" validate:"required,max=150"`
	Address    string `form:"address" validate:"max=255"`
	City       string `form:"city" validate:"max=100"`
	Country    string `form:"country" validate:"max=100"`
	PostalCode string `form:"postal_code" validate:"max=20"`
}

// Handler обрабатывает GET и POST /account/edit.
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
	const op = "handlers.account.edit"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		current, err := h.service.Profile(r.Context(), user.UUID)
		if err != nil {
			log.Error("failed to load profile", sl.Err(err))
			h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
			return
		}
		h.render(w, r, user, http.StatusOK, web.NewForm(profileValues(current)))
		return
	}

	var req Request
	form, err := web.ParseForm(r, &req)
	if err != nil {
		log.Error("failed to decode form", sl.Err(err))
		form.AddError("", "Invalid form submission.")
		h.render(w, r, user, http.StatusBadRequest, form)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		form.AddValidationErrors(err)
		h.render(w, r, user, http.StatusBadRequest, form)
		return
	}

	err = h.service.UpdateProfile(r.Context(), user.UUID, models.Profile{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		City:       req.City,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	http.Redirect(w, r, "/account", http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, user *models.User, status int, form *web.Form) {
	h.pages.Render(w, r, status, web.PageEdit, web.Page{
		Title: "Edit your details",
		User:  user,
		Form:  form,
		Data:  web.ProfileFields(),
	})
}

func profileValues(u *models.User) url.Values {
	return url.Values{
		"first_name":  {u.FirstName},
		"last_name":   {u.LastName},
		"address":     {u.Address},
		"city":        {u.City},
		"country":     {u.Country},
		"postal_code": {u.PostalCode},
	}
}
