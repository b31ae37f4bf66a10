package ports

import (
	"context"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
)

// --- INPUTS (Command Pattern) ---

type CreatePostCmd struct {
	Fields     domain.PostFields
	TTLMinutes *int   // nil = absent ou non numérique
	Honeypot   string // champ caché du formulaire, rempli uniquement par les bots
}

type SubmitFeedbackCmd struct {
	Type      string
	Message   string
	Contact   string
	Page      string
	URL       string
	UserAgent string
	Honeypot  string
}

// --- PORTS PRIMAIRES (Driving) ---

type PostService interface {
	// Seule opération qui renvoie le SecretToken.
	CreatePost(ctx context.Context, cmd CreatePostCmd) (*domain.Post, error)
	ListPosts(ctx context.Context, filter domain.Filter) ([]domain.PublicPost, error)
	SearchPosts(ctx context.Context, q domain.Query) (*domain.Page, error)
	DeletePost(ctx context.Context, postID, token string) error
	ReportPost(ctx context.Context, postID, reason string) error
}

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, cmd SubmitFeedbackCmd) error
	SubmitSuggestion(ctx context.Context, text string) error
}
