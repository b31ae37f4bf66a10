package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/jdw0903/EasyLFG/internal/adapters/primary/http"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/eventbroker"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/ratelimit"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/repository"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/security"
	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
	"github.com/jdw0903/EasyLFG/internal/core/services"
)

func newTestClient(t *testing.T, limits httpadapter.Limiters) *Client {
	t.Helper()
	posts := services.NewPostService(repository.NewMemoryRepo(), security.NewRandomTokenIssuer(16), eventbroker.NoopPublisher{}, nil)
	feedback := services.NewFeedbackService(nil, time.Second, nil)
	srv := httptest.NewServer(httpadapter.NewServer(posts, feedback, limits).Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestRoundTrip(t *testing.T) {
	c := newTestClient(t, httpadapter.Limiters{})
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatal(err)
	}

	ttl := 120
	created, err := c.CreatePost(ctx, domain.PostFields{Game: "Valorant", Platform: "PC", Region: "EU", TimeWindow: domain.TimeWindowNow}, &ttl)
	if err != nil {
		t.Fatal(err)
	}
	if created.SecretToken == "" || created.ExpiresAt.Sub(created.CreatedAt) != 2*time.Hour {
		t.Fatalf("created = %+v", created)
	}

	list, err := c.ListPosts(ctx, domain.Filter{Game: "valo"})
	if err != nil || len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v, err = %v", list, err)
	}
	if !list[0].CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("timestamps lost in transit")
	}

	page, err := c.SearchPosts(ctx, domain.Query{Filter: domain.Filter{Game: "Valorant", Platform: "PC"}, Match: true})
	if err != nil || page.Total != 1 || !page.Items[0].Scored || page.Items[0].Score != 7 {
		t.Fatalf("search = %+v, err = %v", page, err)
	}

	if err := c.ReportPost(ctx, created.ID, "spam"); err != nil {
		t.Fatal(err)
	}
	if err := c.DeletePost(ctx, created.ID, "bad"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("bad token err = %v", err)
	}
	if err := c.DeletePost(ctx, created.ID, created.SecretToken); err != nil {
		t.Fatal(err)
	}
	var apiErr *APIError
	if err := c.DeletePost(ctx, created.ID, created.SecretToken); !errors.As(err, &apiErr) || apiErr.Message != "Post not found" {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestValidationErrors(t *testing.T) {
	c := newTestClient(t, httpadapter.Limiters{})
	ctx := context.Background()

	if _, err := c.CreatePost(ctx, domain.PostFields{Game: "g"}, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if err := c.Suggest(ctx, "no"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("suggest err = %v", err)
	}
	if err := c.SendFeedback(ctx, ports.SubmitFeedbackCmd{Message: "works well"}); err != nil {
		t.Fatalf("feedback err = %v", err)
	}
}

func TestRateLimited(t *testing.T) {
	c := newTestClient(t, httpadapter.Limiters{Mutate: ratelimit.NewMemoryLimiter(1, time.Minute)})
	ctx := context.Background()

	_ = c.ReportPost(ctx, "x", "")
	if err := c.ReportPost(ctx, "x", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v", err)
	}
}

func TestUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1")
	if _, err := c.ListPosts(context.Background(), domain.Filter{}); err == nil {
		t.Fatal("expected a transport error")
	}
}
