// Package response содержит JSON-ответы служебных эндпоинтов.
// Страницы сайта рендерятся через пакет web.
package response

// Response описывает стандартную структуру JSON‑ответа сервера.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error возвращает Response с ошибкой.
func Error(msg string, data any) Response {
	return Response{Status: StatusError, Error: msg, Data: data}
}
