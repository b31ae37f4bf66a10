package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/eventbroker"
)

// ReviewThreshold : à partir de ce nombre de reports, le post est signalé dans les logs.
// Aucune action automatique n'est prise.
const ReviewThreshold = 3

// Stats : compteurs du journal d'activité depuis le démarrage.
type Stats struct {
	Created  int
	Deleted  int
	Reported int
	Invalid  int
}

// ActivityLog consomme les événements de cycle de vie des posts.
type ActivityLog struct {
	mu    sync.Mutex
	stats Stats
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

// Subscribe écoute tous les sujets lfg.post.*.
func (h *ActivityLog) Subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return nc.Subscribe(eventbroker.SubjectAll, h.Handle)
}

func (h *ActivityLog) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

func (h *ActivityLog) Handle(msg *nats.Msg) {
	// 1. Le contexte de trace vient des headers injectés par le publisher
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(msg.Header))

	tracer := otel.Tracer("easylfg-events")
	_, span := tracer.Start(ctx, "process "+msg.Subject,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("messaging.destination", msg.Subject)),
	)
	defer span.End()

	// 2. Décodage selon le sujet
	var err error
	switch msg.Subject {
	case eventbroker.SubjectPostCreated:
		var ev eventbroker.PostCreatedEvent
		if err = json.Unmarshal(msg.Data, &ev); err == nil {
			h.count(func(s *Stats) { s.Created++ })
			slog.Info("📨 Post created event", "post_id", ev.ID, "game", ev.Game, "platform", ev.Platform, "expires_at", ev.ExpiresAt)
		}
	case eventbroker.SubjectPostDeleted:
		var ev eventbroker.PostDeletedEvent
		if err = json.Unmarshal(msg.Data, &ev); err == nil {
			h.count(func(s *Stats) { s.Deleted++ })
			slog.Info("📨 Post deleted event", "post_id", ev.ID)
		}
	case eventbroker.SubjectPostReported:
		var ev eventbroker.PostReportedEvent
		if err = json.Unmarshal(msg.Data, &ev); err == nil {
			h.count(func(s *Stats) { s.Reported++ })
			if ev.Reports >= ReviewThreshold {
				slog.Warn("🚩 Post needs review", "post_id", ev.ID, "reports", ev.Reports, "reason", ev.Reason)
			} else {
				slog.Info("📨 Post reported event", "post_id", ev.ID, "reports", ev.Reports)
			}
		}
	default:
		slog.Debug("Ignoring unknown subject", "subject", msg.Subject)
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid event")
		h.count(func(s *Stats) { s.Invalid++ })
		slog.Error("❌ Invalid event format", "subject", msg.Subject, "error", err)
	}
}

func (h *ActivityLog) count(fn func(*Stats)) {
	h.mu.Lock()
	fn(&h.stats)
	h.mu.Unlock()
}
