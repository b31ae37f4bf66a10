package domain

import (
	"strings"
	"time"
)

const (
	MaxFeedbackType    = 20
	MaxFeedbackMessage = 1000
	MaxFeedbackPage    = 40
	MaxFeedbackURL     = 200
	MaxUserAgent       = 200
	MaxSuggestionLog   = 300
)

type Feedback struct {
	Type      string
	Message   string
	Contact   string
	Page      string
	URL       string
	UserAgent string
	CreatedAt time.Time
}

// NewFeedback nettoie chaque champ ; le message est validé en amont, par l'adaptateur HTTP.
func NewFeedback(kind, message, contact, page, url, userAgent string, now time.Time) *Feedback {
	if strings.TrimSpace(kind) == "" {
		kind = "idea"
	}
	if strings.TrimSpace(page) == "" {
		page = "unknown"
	}
	return &Feedback{
		Type:      Sanitize(kind, MaxFeedbackType),
		Message:   Sanitize(message, MaxFeedbackMessage),
		Contact:   Sanitize(contact, MaxContact),
		Page:      Sanitize(page, MaxFeedbackPage),
		URL:       Sanitize(url, MaxFeedbackURL),
		UserAgent: Sanitize(userAgent, MaxUserAgent),
		CreatedAt: now,
	}
}

// Subject est l'objet de l'email envoyé à l'équipe.
func (f *Feedback) Subject() string {
	return "EasyLFG Feedback — " + f.Type
}
