package web

import (
	"net/http"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Pages то, что обработчикам нужно от Renderer.
type Pages interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page)
	RenderMessage(w http.ResponseWriter, r *http.Request, user *models.User, msg Message)
	RenderError(w http.ResponseWriter, r *http.Request, user *models.User, status int, msg string)
}

var _ Pages = (*Renderer)(nil)
