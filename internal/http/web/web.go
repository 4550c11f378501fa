// Package web рендерит HTML-страницы магазина из встроенных шаблонов.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/markdown"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/month"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

//go:embed templates/*.html
var files embed.FS

const layoutFile = "templates/layout.html"

// Имена страниц.
const (
	PageIndex     = "index"
	PageRegister  = "register"
	PageLogin     = "login"
	PageSetup2FA  = "setup_2fa"
	PageVerifyOTP = "verify_otp"
	PageProducts  = "products"
	PageProduct   = "product"
	PageAccount   = "account"
	PageEdit      = "edit"
	PageMyData    = "my_data"
	PageMessage   = "generic_message"
	PageError     = "error"
)

// Page данные, которые получает каждый шаблон.
type Page struct {
	Title string
	User  *models.User
	Form  *Form
	Data  any
}

// Message данные страницы generic_message.
type Message struct {
	Heading  string
	Text     string
	Link     string
	LinkText string
}

// Renderer хранит разобранные шаблоны: layout + одна страница на ключ.
type Renderer struct {
	pages map[string]*template.Template
	log   *slog.Logger
	now   func() time.Time
}

// New разбирает каждую встроенную страницу вместе с layout.
func New(log *slog.Logger) (*Renderer, error) {
	const op = "web.New"

	r := &Renderer{pages: map[string]*template.Template{}, log: log, now: time.Now}
	funcs := template.FuncMap{
		"markdown":      markdown.ToHTML,
		"firstSentence": markdown.FirstSentence,
		"money":         models.FormatMinor,
		"date":          func(t time.Time) string { return t.UTC().Format("2 Jan 2006 15:04 MST") },
		"daysLeft":      func(t time.Time) int { return month.DaysLeft(t, r.now()) },
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(files, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Render сначала исполняет страницу в буфер, ошибка шаблона не оставляет
// недописанный ответ.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, page Page) {
	const op = "web.Render"

	t, ok := r.pages[name]
	if !ok {
		r.log.Error("unknown page", slog.String("op", op), slog.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if page.Form == nil {
		page.Form = NewForm(nil)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, page); err != nil {
		r.log.Error("failed to render page",
			slog.String("op", op),
			slog.String("page", name),
			slog.String("request_id", middleware.GetReqID(req.Context())),
			sl.Err(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	render.Status(req, status)
	render.HTML(w, req, buf.String())
}

// RenderMessage показывает generic_message со статусом 200.
func (r *Renderer) RenderMessage(w http.ResponseWriter, req *http.Request, user *models.User, msg Message) {
	r.Render(w, req, http.StatusOK, PageMessage, Page{Title: msg.Heading, User: user, Data: msg})
}

// RenderError рендерит error.html. Для 400 сообщение показывается как есть,
// для остальных статусов текст фиксированный.
func (r *Renderer) RenderError(w http.ResponseWriter, req *http.Request, user *models.User, status int, msg string) {
	switch status {
	case http.StatusBadRequest:
	case http.StatusForbidden:
		msg = "You do not have permission to access this page."
	case http.StatusNotFound:
		msg = "The requested resource could not be found."
	default:
		status = http.StatusInternalServerError
		msg = "An error occurred while processing your request."
	}
	r.Render(w, req, status, PageError, Page{Title: "Error", User: user, Data: msg})
}
