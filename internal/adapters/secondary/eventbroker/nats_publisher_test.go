package eventbroker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/nats-io/nats.go"
)

type recordingConn struct {
	msgs []*nats.Msg
}

func (c *recordingConn) PublishMsg(m *nats.Msg) error {
	c.msgs = append(c.msgs, m)
	return nil
}

func TestPublishPostCreatedOmitsToken(t *testing.T) {
	conn := &recordingConn{}
	pub := NewNatsPublisher(conn)

	post := &domain.Post{
		PublicPost:  domain.PublicPost{ID: "p1", Game: "Valorant", Platform: "PC", CreatedAt: time.Now()},
		SecretToken: "super-secret",
	}
	if err := pub.PublishPostCreated(context.Background(), post); err != nil {
		t.Fatal(err)
	}

	if len(conn.msgs) != 1 || conn.msgs[0].Subject != SubjectPostCreated {
		t.Fatalf("unexpected messages: %+v", conn.msgs)
	}
	if strings.Contains(string(conn.msgs[0].Data), "super-secret") {
		t.Fatal("secret token leaked into the event")
	}
	var ev PostCreatedEvent
	if err := json.Unmarshal(conn.msgs[0].Data, &ev); err != nil || ev.ID != "p1" {
		t.Fatalf("decode: %v %+v", err, ev)
	}
}

func TestPublishPostReported(t *testing.T) {
	conn := &recordingConn{}
	pub := NewNatsPublisher(conn)

	if err := pub.PublishPostReported(context.Background(), "p1", 3, "spam"); err != nil {
		t.Fatal(err)
	}
	var ev PostReportedEvent
	_ = json.Unmarshal(conn.msgs[0].Data, &ev)
	if conn.msgs[0].Subject != SubjectPostReported || ev.Reports != 3 || ev.Reason != "spam" {
		t.Fatalf("unexpected event %s %+v", conn.msgs[0].Subject, ev)
	}
}
