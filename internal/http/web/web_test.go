package web

import (
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/services/account"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(newNoopLogger())
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func renderPage(t *testing.T, r *Renderer, status int, name string, page Page) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), status, name, page)
	return rec
}

func TestNew_ParsesEveryPage(t *testing.T) {
	r := newRenderer(t)
	for _, name := range []string{
		PageIndex, PageRegister, PageLogin, PageSetup2FA, PageVerifyOTP, PageProducts,
		PageProduct, PageAccount, PageEdit, PageMyData, PageMessage, PageError,
	} {
		assert.Contains(t, r.pages, name)
	}
	assert.NotContains(t, r.pages, "layout")
}

func TestRender_Pages(t *testing.T) {
	r := newRenderer(t)
	user := &models.User{FirstName: "Ann", LastName: "Lee", Email: "a@example.com"}
	planID := int64(1)
	product := &models.Product{
		ID: 2, Name: "Data", Description: "Full **access**. Second sentence.",
		PriceMinor: 1000, Type: models.ProductDataAccess, PlanID: &planID,
		Plan: &models.Plan{ID: 1, Name: "Annual", DurationMonths: 12},
	}
	end := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		page     string
		data     Page
		contains []string
		absent   []string
	}{
		{
			name:     "anonymous index",
			page:     PageIndex,
			data:     Page{},
			contains: []string{`href="/login"`, `href="/register"`},
			absent:   []string{"Log out"},
		},
		{
			name:     "authenticated index",
			page:     PageIndex,
			data:     Page{User: user},
			contains: []string{"Welcome back, Ann.", "Log out"},
		},
		{
			name:     "products list shows first sentence",
			page:     PageProducts,
			data:     Page{Data: []*models.Product{product}},
			contains: []string{`href="/products/2"`, "Full **access**.", "10.00"},
			absent:   []string{"Second sentence"},
		},
		{
			name:     "product renders markdown",
			page:     PageProduct,
			data:     Page{User: user, Data: product},
			contains: []string{"<strong>access</strong>", `action="/checkout/2"`, "12 month(s)"},
		},
		{
			name:     "register keeps values but not passwords",
			page:     PageRegister,
			data:     Page{Data: RegisterFields(), Form: withValues(url.Values{"email": {"a@example.com"}, "password1": {"secret"}})},
			contains: []string{`value="a@example.com"`, `name="password2"`},
			absent:   []string{"secret"},
		},
		{
			name:     "two factor setup keeps data uri",
			page:     PageSetup2FA,
			data:     Page{User: user, Data: TwoFactorSetup{Secret: "JBSWY3DPEHPK3PXP", QRImage: template.URL("data:image/png;base64,AAAA")}},
			contains: []string{`src="data:image/png;base64,AAAA"`, "JBSWY3DPEHPK3PXP"},
		},
		{
			name: "account with subscription and orders",
			page: PageAccount,
			data: Page{User: user, Data: &services.Overview{
				User:         user,
				Subscription: &models.Subscription{PlanName: "Annual", StartDate: end.AddDate(-1, 0, 0), EndDate: end},
				Orders:       []*models.Order{{OrderNumber: "ord-1", ProductName: "Data", TotalMinor: 1000, Status: models.OrderCompleted}},
			}},
			contains: []string{"Annual", "10 days left", "ord-1", "10.00", "completed"},
		},
		{
			name:     "my data with token",
			page:     PageMyData,
			data:     Page{User: user, Data: MyData{SubscriptionExpiry: end, Token: "tok-123", TokenExpiry: end}},
			contains: []string{"tok-123", "11 Jan 2025"},
		},
		{
			name:     "generic message",
			page:     PageMessage,
			data:     Page{Data: Message{Heading: "Cancelled", Text: "Ordering cancelled. You won't be charged.", Link: "/", LinkText: "Home"}},
			contains: []string{"Cancelled", "You won&#39;t be charged.", `href="/"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := renderPage(t, r, http.StatusOK, tt.page, tt.data)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			body := rec.Body.String()
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestRender_FormErrorsAndStatus(t *testing.T) {
	r := newRenderer(t)
	form := NewForm(nil)
	form.AddError("otp", "Invalid OTP code.")

	rec := renderPage(t, r, http.StatusBadRequest, PageVerifyOTP, Page{Form: form})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid OTP code.")
}

func TestRender_UnknownPage(t *testing.T) {
	rec := renderPage(t, newRenderer(t), http.StatusOK, "missing", Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		status     int
		msg        string
		wantStatus int
		want       string
	}{
		{http.StatusBadRequest, "Invalid activation token.", http.StatusBadRequest, "Invalid activation token."},
		{http.StatusForbidden, "secret detail", http.StatusForbidden, "You do not have permission to access this page."},
		{http.StatusNotFound, "", http.StatusNotFound, "The requested resource could not be found."},
		{http.StatusBadGateway, "stripe down", http.StatusInternalServerError, "An error occurred while processing your request."},
	}

	r := newRenderer(t)
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.RenderError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil, tt.status, tt.msg)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			if tt.status != http.StatusBadRequest && tt.msg != "" {
				assert.NotContains(t, rec.Body.String(), tt.msg)
			}
		})
	}
}

func TestForm_ValidationErrors(t *testing.T) {
	type input struct {
		Email     string `form:"email" validate:"required,email"`
		Password1 string `form:"password1" validate:"required"`
		Password2 string `form:"password2" validate:"eqfield=Password1"`
	}
	v := NewValidator()
	err := v.Struct(input{Email: "nope", Password1: "a", Password2: "b"})
	require.Error(t, err)

	f := NewForm(nil)
	f.AddValidationErrors(err)
	assert.False(t, f.Valid())
	assert.Equal(t, []string{"Enter a valid email address."}, f.FieldErrors("email"))
	assert.Equal(t, []string{"The two password fields didn't match."}, f.FieldErrors("password2"))
}

func withValues(v url.Values) *Form {
	return NewForm(v)
}
