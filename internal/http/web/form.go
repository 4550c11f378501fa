package web

import (
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/ajg/form"
	"github.com/go-playground/validator"
)

// Form хранит введённые значения и ошибки по полям для повторного показа формы.
type Form struct {
	Values url.Values
	Errors map[string][]string
}

// NewForm оборачивает значения формы.
func NewForm(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{Values: values, Errors: map[string][]string{}}
}

// Get возвращает значение поля.
func (f *Form) Get(field string) string {
	return f.Values.Get(field)
}

// AddError добавляет ошибку к полю. Пустое имя поля: ошибка всей формы.
func (f *Form) AddError(field, msg string) {
	f.Errors[field] = append(f.Errors[field], msg)
}

// FieldErrors возвращает ошибки поля.
func (f *Form) FieldErrors(field string) []string {
	return f.Errors[field]
}

// Valid сообщает, что ошибок нет.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// AddValidationErrors переводит ошибки validator в ошибки полей формы.
// Ключ поля берётся из тега form.
func (f *Form) AddValidationErrors(err error) {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		f.AddError("", err.Error())
		return
	}
	for _, fe := range errs {
		f.AddError(fe.Field(), validationMessage(fe))
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "len", "numeric":
		return "Enter a valid code."
	default:
		return "Enter a valid value."
	}
}

// NewValidator возвращает валидатор, который называет поля по тегу form.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ParseForm декодирует urlencoded тело в dst по тегам form и возвращает
// исходные значения для повторного показа формы.
func ParseForm(r *http.Request, dst any) (*Form, error) {
	if err := r.ParseForm(); err != nil {
		return NewForm(nil), err
	}
	dec := form.NewDecoder(nil)
	dec.IgnoreUnknownKeys(true)
	if err := dec.DecodeValues(dst, r.PostForm); err != nil {
		return NewForm(r.PostForm), err
	}
	return NewForm(r.PostForm), nil
}
