package mailer

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
)

// ResendMailer envoie le feedback via le SDK Resend.
type ResendMailer struct {
	client *resend.Client
	from   string
	to     string
}

type Option func(*resend.Client)

// WithBaseURL remplace l'URL de l'API (httptest.Server dans les tests).
func WithBaseURL(raw string) Option {
	return func(c *resend.Client) {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		if u, err := url.Parse(raw); err == nil {
			c.BaseURL = u
		}
	}
}

func NewResendMailer(apiKey, from, to string, opts ...Option) *ResendMailer {
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   15 * time.Second,
	}
	client := resend.NewCustomClient(httpClient, apiKey)
	for _, opt := range opts {
		opt(client)
	}
	return &ResendMailer{client: client, from: from, to: to}
}

func (m *ResendMailer) SendFeedback(ctx context.Context, fb *domain.Feedback) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{m.to},
		Subject: fb.Subject(),
		Html:    RenderFeedback(fb),
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

// RenderFeedback produit le corps HTML ; chaque champ est échappé.
func RenderFeedback(fb *domain.Feedback) string {
	orNA := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return html.EscapeString(v)
	}

	var b strings.Builder
	b.WriteString("<h2>New EasyLFG Feedback</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Type:</strong> %s</p>\n", html.EscapeString(fb.Type))
	fmt.Fprintf(&b, "<p><strong>Message:</strong><br>%s</p>\n",
		strings.ReplaceAll(html.EscapeString(fb.Message), "\n", "<br>"))
	fmt.Fprintf(&b, "<p><strong>Contact:</strong> %s</p>\n", orNA(fb.Contact, "None provided"))
	fmt.Fprintf(&b, "<p><strong>Page:</strong> %s</p>\n", orNA(fb.Page, "N/A"))
	fmt.Fprintf(&b, "<p><strong>URL:</strong> %s</p>\n", orNA(fb.URL, "N/A"))
	fmt.Fprintf(&b, "<p><strong>User Agent:</strong> %s</p>\n", orNA(fb.UserAgent, "N/A"))
	fmt.Fprintf(&b, "<p><strong>Submitted at:</strong> %s</p>\n", fb.CreatedAt.Format(time.RFC3339))
	return b.String()
}
