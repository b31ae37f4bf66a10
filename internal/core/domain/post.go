package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- ERREURS DU DOMAINE ---
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidRequest  = fmt.Errorf("%w: Invalid request.", ErrValidation)
	ErrMissingFields   = fmt.Errorf("%w: game and platform are required", ErrValidation)
	ErrMessageTooShort = fmt.Errorf("%w: Message is required and must be at least 3 characters.", ErrValidation)
	ErrSuggestionShort = fmt.Errorf("%w: Suggestion too short", ErrValidation)
	ErrNotFound        = errors.New("Post not found")
	ErrForbidden       = errors.New("Invalid token")
	ErrDeliveryFailed  = errors.New("Could not send feedback email")
)

// PublicMessage retire le préfixe de wrapping pour l'affichage client.
func PublicMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
}

// --- TTL ---

const (
	MinTTLMinutes     = 60
	MaxTTLMinutes     = 1440
	DefaultTTLMinutes = MaxTTLMinutes
)

// ClampTTL borne la durée de vie demandée. nil = absente ou non numérique.
func ClampTTL(minutes *int) time.Duration {
	ttl := DefaultTTLMinutes
	if minutes != nil {
		ttl = min(max(*minutes, MinTTLMinutes), MaxTTLMinutes)
	}
	return time.Duration(ttl) * time.Minute
}

// --- LIMITES DE CHAMPS ---

const (
	MaxGame        = 80
	MaxPlatform    = 30
	MaxRegion      = 20
	MaxPlaystyle   = 50
	MaxGroupSize   = 20
	MaxMic         = 20
	MaxDescription = 280
	MaxContact     = 80
	MaxTimeWindow  = 40
	MaxReason      = 120

	DefaultMic = "Preferred"
)

// Sanitize trim puis tronque à maxLen runes.
func Sanitize(value string, maxLen int) string {
	v := strings.TrimSpace(value)
	r := []rune(v)
	if len(r) > maxLen {
		return string(r[:maxLen])
	}
	return v
}

// --- ENTITÉ ---

// PublicPost est la projection exposée en lecture (sans token ni compteur de reports).
type PublicPost struct {
	ID          string
	Game        string
	Platform    string
	Region      string
	Playstyle   string
	GroupSize   string
	Mic         string
	TimeWindow  string
	Description string
	Contact     string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsActive : un post est visible tant que ExpiresAt > now.
func (p PublicPost) IsActive(now time.Time) bool {
	return p.ExpiresAt.After(now)
}

type Post struct {
	PublicPost
	SecretToken string
	Reports     int
}

func (p *Post) Public() PublicPost {
	return p.PublicPost
}

// PostFields regroupe les champs libres saisis par le créateur.
type PostFields struct {
	Game        string
	Platform    string
	Region      string
	Playstyle   string
	GroupSize   string
	Mic         string
	TimeWindow  string
	Description string
	Contact     string
}

func (f PostFields) sanitized() PostFields {
	out := PostFields{
		Game:        Sanitize(f.Game, MaxGame),
		Platform:    Sanitize(f.Platform, MaxPlatform),
		Region:      Sanitize(f.Region, MaxRegion),
		Playstyle:   Sanitize(f.Playstyle, MaxPlaystyle),
		GroupSize:   Sanitize(f.GroupSize, MaxGroupSize),
		Mic:         Sanitize(f.Mic, MaxMic),
		TimeWindow:  Sanitize(f.TimeWindow, MaxTimeWindow),
		Description: Sanitize(f.Description, MaxDescription),
		Contact:     Sanitize(f.Contact, MaxContact),
	}
	if out.Mic == "" {
		out.Mic = DefaultMic
	}
	return out
}

// --- FACTORY ---

// NewPost crée un post valide : champs nettoyés, TTL borné, ID généré ici.
// Le token est fourni par l'appelant (TokenIssuer).
func NewPost(fields PostFields, ttlMinutes *int, token string, now time.Time) (*Post, error) {
	f := fields.sanitized()
	if f.Game == "" || f.Platform == "" {
		return nil, ErrMissingFields
	}

	return &Post{
		PublicPost: PublicPost{
			ID:          uuid.NewString(),
			Game:        f.Game,
			Platform:    f.Platform,
			Region:      f.Region,
			Playstyle:   f.Playstyle,
			GroupSize:   f.GroupSize,
			Mic:         f.Mic,
			TimeWindow:  f.TimeWindow,
			Description: f.Description,
			Contact:     f.Contact,
			CreatedAt:   now,
			ExpiresAt:   now.Add(ClampTTL(ttlMinutes)),
		},
		SecretToken: token,
	}, nil
}

// Authorize compare le token présenté à celui du post (égalité exacte).
func (p *Post) Authorize(token string) error {
	if token == "" || token != p.SecretToken {
		return ErrForbidden
	}
	return nil
}
