package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
)

type stubMailer struct {
	sent []*domain.Feedback
	err  error
	wait time.Duration
}

func (m *stubMailer) SendFeedback(ctx context.Context, fb *domain.Feedback) error {
	if m.wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.wait):
		}
	}
	m.sent = append(m.sent, fb)
	return m.err
}

func TestSubmitFeedbackSends(t *testing.T) {
	mailer := &stubMailer{}
	svc := NewFeedbackService(mailer, time.Second, nil)

	err := svc.SubmitFeedback(context.Background(), ports.SubmitFeedbackCmd{
		Message: "  love the match mode  ",
		Contact: "me#1234",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails", len(mailer.sent))
	}
	fb := mailer.sent[0]
	if fb.Type != "idea" || fb.Page != "unknown" || fb.Message != "love the match mode" {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	if fb.Subject() != "EasyLFG Feedback — idea" {
		t.Fatalf("subject = %q", fb.Subject())
	}
}

func TestSubmitFeedbackHoneypot(t *testing.T) {
	mailer := &stubMailer{}
	svc := NewFeedbackService(mailer, time.Second, nil)
	ctx := context.Background()

	if err := svc.SubmitFeedback(ctx, ports.SubmitFeedbackCmd{Message: "hello", Honeypot: "x"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("honeypot err = %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("rejected feedback must not be mailed")
	}
}

func TestSubmitFeedbackWithoutMailer(t *testing.T) {
	svc := NewFeedbackService(nil, 0, nil)
	if err := svc.SubmitFeedback(context.Background(), ports.SubmitFeedbackCmd{Message: "hello"}); err != nil {
		t.Fatalf("log-only mode should succeed: %v", err)
	}
}

func TestSubmitFeedbackDeliveryFailure(t *testing.T) {
	ctx := context.Background()

	svc := NewFeedbackService(&stubMailer{err: errors.New("503 from provider")}, time.Second, nil)
	if err := svc.SubmitFeedback(ctx, ports.SubmitFeedbackCmd{Message: "hello"}); !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("err = %v", err)
	}

	slow := NewFeedbackService(&stubMailer{wait: time.Second}, 10*time.Millisecond, nil)
	if err := slow.SubmitFeedback(ctx, ports.SubmitFeedbackCmd{Message: "hello"}); !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("timeout err = %v", err)
	}
}

func TestSubmitSuggestion(t *testing.T) {
	svc := NewFeedbackService(nil, 0, nil)
	ctx := context.Background()

	if err := svc.SubmitSuggestion(ctx, "add Deadlock"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SubmitSuggestion(ctx, strings.Repeat("é", 1000)); err != nil {
		t.Fatalf("long suggestion: %v", err)
	}
}
