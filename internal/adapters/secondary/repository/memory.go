package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
)

// MemoryRepo garde les posts en RAM (durée de vie = celle du process).
// Un seul mutex couvre toutes les séquences lecture-modification-écriture.
type MemoryRepo struct {
	mu    sync.Mutex
	posts []*domain.Post // ordre d'insertion
	index map[string]*domain.Post
}

func NewMemoryRepo() ports.PostRepository {
	return &MemoryRepo{index: make(map[string]*domain.Post)}
}

// Insert : copie le post pour que l'appelant ne partage pas l'état stocké.
func (r *MemoryRepo) Insert(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[post.ID]; exists {
		return fmt.Errorf("post %s already exists", post.ID)
	}
	cp := *post
	r.posts = append(r.posts, &cp)
	r.index[cp.ID] = &cp
	return nil
}

func (r *MemoryRepo) ListActive(ctx context.Context, now time.Time) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(now)

	out := make([]domain.Post, len(r.posts))
	for i, p := range r.posts {
		out[i] = *p
	}
	return out, nil
}

func (r *MemoryRepo) Remove(ctx context.Context, postID string, now time.Time, check func(*domain.Post) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.findActiveLocked(postID, now)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(p); err != nil {
			return err
		}
	}
	r.deleteLocked(postID)
	return nil
}

func (r *MemoryRepo) Mutate(ctx context.Context, postID string, now time.Time, fn func(*domain.Post)) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.findActiveLocked(postID, now)
	if err != nil {
		return domain.Post{}, err
	}
	fn(p)
	return *p, nil
}

func (r *MemoryRepo) Sweep(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now)
}

// --- Helpers (appelés verrou tenu) ---

// findActiveLocked : un post expiré mais pas encore purgé est traité comme absent, et purgé au passage.
func (r *MemoryRepo) findActiveLocked(postID string, now time.Time) (*domain.Post, error) {
	p, ok := r.index[postID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !p.IsActive(now) {
		r.deleteLocked(postID)
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) deleteLocked(postID string) {
	delete(r.index, postID)
	for i, p := range r.posts {
		if p.ID == postID {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return
		}
	}
}

func (r *MemoryRepo) sweepLocked(now time.Time) int {
	kept := r.posts[:0]
	removed := 0
	for _, p := range r.posts {
		if p.IsActive(now) {
			kept = append(kept, p)
			continue
		}
		delete(r.index, p.ID)
		removed++
	}
	// Libère les pointeurs restés en fin de tableau
	for i := len(kept); i < len(r.posts); i++ {
		r.posts[i] = nil
	}
	r.posts = kept
	return removed
}
