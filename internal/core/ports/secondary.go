package ports

import (
	"context"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
)

// --- STOCKAGE ---

// PostRepository : chaque méthode est atomique vis-à-vis des autres.
// Les posts expirés (ExpiresAt <= now) sont traités comme absents.
type PostRepository interface {
	Insert(ctx context.Context, post *domain.Post) error
	// ListActive évince les posts expirés puis renvoie une copie des posts restants.
	ListActive(ctx context.Context, now time.Time) ([]domain.Post, error)
	// Remove supprime le post si check (appelé sous le verrou) ne renvoie pas d'erreur.
	Remove(ctx context.Context, postID string, now time.Time, check func(*domain.Post) error) error
	// Mutate applique fn au post stocké et renvoie une copie du résultat.
	Mutate(ctx context.Context, postID string, now time.Time, fn func(*domain.Post)) (domain.Post, error)
	// Sweep supprime tous les posts expirés et renvoie leur nombre.
	Sweep(ctx context.Context, now time.Time) int
}

// --- SÉCURITÉ ---

// TokenIssuer génère le secret de capacité d'un post (>= 128 bits d'aléa).
type TokenIssuer interface {
	Issue() (string, error)
}

// --- MESSAGERIE (BROKER) ---

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishPostDeleted(ctx context.Context, postID string) error
	PublishPostReported(ctx context.Context, postID string, reports int, reason string) error
}

// --- EMAIL ---

type Mailer interface {
	SendFeedback(ctx context.Context, fb *domain.Feedback) error
}

// --- RATE LIMITING ---

type RateLimiter interface {
	// Allow consomme une unité pour key ; false si la fenêtre est épuisée.
	Allow(ctx context.Context, key string) (bool, error)
}

// --- STOCKAGE LOCAL CLIENT ---

// KeyValueStore abstrait le stockage local du navigateur / de la CLI.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// Clock permet de figer le temps dans les tests.
type Clock func() time.Time
