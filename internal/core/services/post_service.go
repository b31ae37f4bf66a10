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

// PostService implémente ports.PostService (Primary Port).
type PostService struct {
	repo      ports.PostRepository
	tokens    ports.TokenIssuer
	publisher ports.EventPublisher
	now       ports.Clock
}

func NewPostService(repo ports.PostRepository, tokens ports.TokenIssuer, pub ports.EventPublisher, clock ports.Clock) *PostService {
	if clock == nil {
		clock = time.Now
	}
	return &PostService{repo: repo, tokens: tokens, publisher: pub, now: clock}
}

func (s *PostService) CreatePost(ctx context.Context, cmd ports.CreatePostCmd) (*domain.Post, error) {
	// 1. Anti-spam : le honeypot n'est rempli que par les bots
	if strings.TrimSpace(cmd.Honeypot) != "" {
		slog.Warn("🍯 Honeypot triggered, post rejected")
		return nil, domain.ErrInvalidRequest
	}

	// 2. Capacité de suppression
	token, err := s.tokens.Issue()
	if err != nil {
		return nil, fmt.Errorf("token issue failed: %w", err)
	}

	// 3. Domaine : validation + nettoyage + TTL
	post, err := domain.NewPost(cmd.Fields, cmd.TTLMinutes, token, s.now())
	if err != nil {
		return nil, err
	}

	// 4. Persistance (mémoire)
	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, fmt.Errorf("repository insert failed: %w", err)
	}

	// 5. Événement : un échec ne doit pas faire échouer la requête, le post est stocké
	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.Warn("Failed to publish post.created", "post_id", post.ID, "error", err)
	}

	slog.Info("📝 Post created", "post_id", post.ID, "game", post.Game, "expires_at", post.ExpiresAt)
	return post, nil
}

// ListPosts renvoie les posts actifs, plus récents d'abord, sans les secrets.
func (s *PostService) ListPosts(ctx context.Context, filter domain.Filter) ([]domain.PublicPost, error) {
	public, err := s.activePublic(ctx)
	if err != nil {
		return nil, err
	}

	// "mine" n'a pas de sens côté serveur : pas de registre de capacités ici
	filter.Mine = false
	filter.NowOnly = false

	ranked := ApplyQuery(public, domain.Query{Filter: filter, Sort: domain.SortNewest}, nil)
	out := make([]domain.PublicPost, len(ranked))
	for i, r := range ranked {
		out[i] = r.PublicPost
	}
	return out, nil
}

// SearchPosts applique filtres, tri (ou mode match) et pagination côté serveur.
func (s *PostService) SearchPosts(ctx context.Context, q domain.Query) (*domain.Page, error) {
	public, err := s.activePublic(ctx)
	if err != nil {
		return nil, err
	}
	page := Paginate(ApplyQuery(public, q, nil), q.Page)
	return &page, nil
}

func (s *PostService) DeletePost(ctx context.Context, postID, token string) error {
	err := s.repo.Remove(ctx, postID, s.now(), func(p *domain.Post) error {
		return p.Authorize(token)
	})
	if err != nil {
		return err
	}

	_ = s.publisher.PublishPostDeleted(ctx, postID)
	slog.Info("🗑️ Post deleted", "post_id", postID)
	return nil
}

func (s *PostService) ReportPost(ctx context.Context, postID, reason string) error {
	post, err := s.repo.Mutate(ctx, postID, s.now(), func(p *domain.Post) {
		p.Reports++
	})
	if err != nil {
		return err
	}

	safeReason := domain.Sanitize(reason, domain.MaxReason)
	slog.Info("🚩 Post reported", "post_id", postID, "reason", safeReason, "reports", post.Reports)

	if err := s.publisher.PublishPostReported(ctx, postID, post.Reports, safeReason); err != nil {
		slog.Warn("Failed to publish post.reported", "post_id", postID, "error", err)
	}
	return nil
}

func (s *PostService) activePublic(ctx context.Context) ([]domain.PublicPost, error) {
	posts, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("repository list failed: %w", err)
	}
	public := make([]domain.PublicPost, len(posts))
	for i := range posts {
		public[i] = posts[i].Public()
	}
	return public, nil
}
