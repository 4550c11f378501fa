// Package models содержит доменные структуры магазина: пользователей,
// токены активации, OTP-секреты, каталог, заказы и подписки,
// а также доменные ошибки и функции валидации на границе записи.
package models

import (
	"strings"
	"time"
)

// Группы пользователей, создаваемые миграцией.
const (
	GroupSiteUser  = "Site User"
	GroupSiteAdmin = "Site Admin"
)

// User зарегистрированный покупатель. Email служит логином.
type User struct {
	UUID         string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Address      string
	City         string
	Country      string
	PostalCode   string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	DateJoined   time.Time
	Groups       []string
}

// FullName возвращает "First Last" без крайних пробелов.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// InGroup сообщает, состоит ли пользователь в группе name.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// Profile редактируемая часть записи пользователя.
type Profile struct {
	FirstName  string
	LastName   string
	Address    string
	City       string
	Country    string
	PostalCode string
}

// NormalizeEmail приводит домен адреса к нижнему регистру и обрезает пробелы.
// Локальная часть остаётся как введена.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
