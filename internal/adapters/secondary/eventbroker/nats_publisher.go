package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	SubjectPostCreated  = "lfg.post.created"
	SubjectPostDeleted  = "lfg.post.deleted"
	SubjectPostReported = "lfg.post.reported"
	SubjectAll          = "lfg.post.>"
)

// Conn est le sous-ensemble de *nats.Conn utilisé ici.
type Conn interface {
	PublishMsg(m *nats.Msg) error
}

type NatsPublisher struct {
	nc Conn
}

func NewNatsPublisher(nc Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Le token n'est jamais publié.
type PostCreatedEvent struct {
	ID        string    `json:"id"`
	Game      string    `json:"game"`
	Platform  string    `json:"platform"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PostDeletedEvent struct {
	ID string `json:"id"`
}

type PostReportedEvent struct {
	ID      string `json:"id"`
	Reports int    `json:"reports"`
	Reason  string `json:"reason,omitempty"`
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, SubjectPostCreated, PostCreatedEvent{
		ID:        post.ID,
		Game:      post.Game,
		Platform:  post.Platform,
		Region:    post.Region,
		CreatedAt: post.CreatedAt,
		ExpiresAt: post.ExpiresAt,
	})
}

func (p *NatsPublisher) PublishPostDeleted(ctx context.Context, postID string) error {
	return p.publish(ctx, SubjectPostDeleted, PostDeletedEvent{ID: postID})
}

func (p *NatsPublisher) PublishPostReported(ctx context.Context, postID string, reports int, reason string) error {
	return p.publish(ctx, SubjectPostReported, PostReportedEvent{ID: postID, Reports: reports, Reason: reason})
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	// Injection du contexte de trace dans les headers NATS
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.Debug("📢 Publishing event", "topic", subject)
	return p.nc.PublishMsg(msg)
}

// NoopPublisher est utilisé quand NATS_URL est vide.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostCreated(context.Context, *domain.Post) error { return nil }
func (NoopPublisher) PublishPostDeleted(context.Context, string) error       { return nil }
func (NoopPublisher) PublishPostReported(context.Context, string, int, string) error {
	return nil
}
