package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
)

// FeedbackService est indépendant des posts : un échec d'envoi ne touche jamais au store.
type FeedbackService struct {
	mailer  ports.Mailer // nil = log uniquement
	timeout time.Duration
	now     ports.Clock
}

func NewFeedbackService(mailer ports.Mailer, timeout time.Duration, clock ports.Clock) *FeedbackService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if clock == nil {
		clock = time.Now
	}
	return &FeedbackService{mailer: mailer, timeout: timeout, now: clock}
}

func (s *FeedbackService) SubmitFeedback(ctx context.Context, cmd ports.SubmitFeedbackCmd) error {
	if strings.TrimSpace(cmd.Honeypot) != "" {
		return domain.ErrInvalidRequest
	}

	fb := domain.NewFeedback(cmd.Type, cmd.Message, cmd.Contact, cmd.Page, cmd.URL, cmd.UserAgent, s.now().UTC())

	// Toujours garder une trace côté serveur
	slog.Info("📬 EASYLFG_FEEDBACK",
		"type", fb.Type,
		"message", fb.Message,
		"contact", fb.Contact,
		"page", fb.Page,
		"url", fb.URL,
		"user_agent", fb.UserAgent,
		"at", fb.CreatedAt,
	)

	if s.mailer == nil {
		slog.Warn("RESEND_API_KEY is not set; feedback email not sent")
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.mailer.SendFeedback(sendCtx, fb); err != nil {
		slog.Error("❌ Error sending feedback email", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func (s *FeedbackService) SubmitSuggestion(ctx context.Context, text string) error {
	r := []rune(text)
	if len(r) > domain.MaxSuggestionLog {
		r = r[:domain.MaxSuggestionLog]
	}
	slog.Info("📩 New suggestion", "text", string(r))
	return nil
}
