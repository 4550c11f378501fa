package models

import "time"

// ActivationEmail публикует веб-приложение, читает sender.
type ActivationEmail struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

// ExpiryReminder публикует scheduler для подписок, которые скоро закончатся.
type ExpiryReminder struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	PlanName string    `json:"plan_name"`
	EndDate  time.Time `json:"end_date"`
}
