package web

import (
	"html/template"
	"time"
)

// Field описывает поле формы регистрации или редактирования профиля.
type Field struct {
	Name  string
	Label string
	Type  string
}

var profileFields = []Field{
	{Name: "first_name", Label: "First name", Type: "text"},
	{Name: "last_name", Label: "Last name", Type: "text"},
	{Name: "address", Label: "Address", Type: "text"},
	{Name: "city", Label: "City", Type: "text"},
	{Name: "country", Label: "Country", Type: "text"},
	{Name: "postal_code", Label: "Postal code", Type: "text"},
}

// ProfileFields поля страницы редактирования.
func ProfileFields() []Field {
	return append([]Field(nil), profileFields...)
}

// RegisterFields поля страницы регистрации.
func RegisterFields() []Field {
	fields := []Field{{Name: "email", Label: "Email", Type: "email"}}
	fields = append(fields, profileFields...)
	return append(fields,
		Field{Name: "password1", Label: "Password", Type: "password"},
		Field{Name: "password2", Label: "Password confirmation", Type: "password"},
	)
}

// TwoFactorSetup данные страницы setup_2fa.
type TwoFactorSetup struct {
	Secret  string
	QRImage template.URL
}

// MyData данные страницы my_data. Token пустой, пока токен не запрошен.
type MyData struct {
	SubscriptionExpiry time.Time
	Token              string
	TokenExpiry        time.Time
}
