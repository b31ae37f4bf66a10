package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
)

// ApplyQuery filtre puis ordonne les posts.
// isOwned vient du registre de capacités du client ; nil = filtre "mine" ignoré.
func ApplyQuery(posts []domain.PublicPost, q domain.Query, isOwned func(postID string) bool) []domain.RankedPost {
	out := make([]domain.RankedPost, 0, len(posts))
	for _, p := range posts {
		if matchesFilter(p, q.Filter, isOwned) {
			out = append(out, domain.RankedPost{PublicPost: p})
		}
	}

	// Mode match : le score remplace le tri demandé
	if q.Match {
		criteria := q.Criteria()
		for i := range out {
			out[i].Score, out[i].Label = domain.Score(out[i].PublicPost, criteria)
			out[i].Scored = true
		}
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return out
	}

	sortPosts(out, q.Sort)
	return out
}

func matchesFilter(p domain.PublicPost, f domain.Filter, isOwned func(string) bool) bool {
	if f.Game != "" && !strings.Contains(strings.ToLower(p.Game), strings.ToLower(f.Game)) {
		return false
	}
	if f.Platform != "" && p.Platform != f.Platform {
		return false
	}
	if f.Region != "" && p.Region != f.Region {
		return false
	}
	if f.Mine && isOwned != nil && !isOwned(p.ID) {
		return false
	}
	if f.NowOnly && p.TimeWindow != domain.TimeWindowNow && p.TimeWindow != domain.TimeWindowSoon {
		return false
	}
	return true
}

func sortPosts(posts []domain.RankedPost, order domain.SortOrder) {
	var less func(a, b domain.RankedPost) bool

	switch order {
	case domain.SortOldest:
		less = func(a, b domain.RankedPost) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case domain.SortExpiresSoon:
		less = func(a, b domain.RankedPost) bool { return expiryKey(a.ExpiresAt) < expiryKey(b.ExpiresAt) }
	case domain.SortGameAZ:
		less = func(a, b domain.RankedPost) bool { return strings.ToLower(a.Game) < strings.ToLower(b.Game) }
	default:
		less = func(a, b domain.RankedPost) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
}

// Sans expiration connue, le post passe en dernier.
func expiryKey(t time.Time) int64 {
	if t.IsZero() {
		return math.MaxInt64
	}
	return t.UnixMilli()
}

// Paginate découpe en pages de domain.PageSize ; une page hors bornes est ramenée à la dernière.
func Paginate(items []domain.RankedPost, page int) domain.Page {
	total := len(items)
	totalPages := max(1, (total+domain.PageSize-1)/domain.PageSize)
	page = min(max(page, 1), totalPages)

	start := min((page-1)*domain.PageSize, total)
	end := min(start+domain.PageSize, total)

	return domain.Page{
		Items:      items[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
}
