package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
)

// --- REQUÊTES ---

type createPostRequest struct {
	Game        string     `json:"game"`
	Platform    string     `json:"platform"`
	Region      string     `json:"region"`
	Playstyle   string     `json:"playstyle"`
	GroupSize   string     `json:"groupSize"`
	Mic         string     `json:"mic"`
	Description string     `json:"description"`
	Contact     string     `json:"contact"`
	TimeWindow  string     `json:"timeWindow"`
	TTLMinutes  ttlMinutes `json:"ttlMinutes"`
	Honeypot    string     `json:"honeypot"`
}

func (r createPostRequest) fields() domain.PostFields {
	return domain.PostFields{
		Game:        r.Game,
		Platform:    r.Platform,
		Region:      r.Region,
		Playstyle:   r.Playstyle,
		GroupSize:   r.GroupSize,
		Mic:         r.Mic,
		TimeWindow:  r.TimeWindow,
		Description: r.Description,
		Contact:     r.Contact,
	}
}

// ttlMinutes accepte un nombre JSON (tronqué) ou une chaîne numérique ("90", "90min").
// Toute autre valeur est traitée comme absente.
type ttlMinutes struct {
	value *int
}

func (t *ttlMinutes) UnmarshalJSON(data []byte) error {
	t.value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		t.value = leadingInt(raw)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		t.value = truncatedInt(n)
	}
	return nil
}

// truncatedInt : 1.2e3 -> 1200 ; les valeurs hors bornes saturent, le clamp fait le reste.
func truncatedInt(n json.Number) *int {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	f = math.Trunc(f)
	f = math.Max(math.Min(f, math.MaxInt32), math.MinInt32)
	v := int(f)
	return &v
}

// leadingInt lit l'entier en tête de s ; les décimales sont tronquées.
func leadingInt(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if (r == '-' || r == '+') && i == 0 {
			end = i + 1
			continue
		}
		if !unicode.IsDigit(r) {
			break
		}
		end = i + 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &n
}

// Token absent ou vide : même réponse qu'un mauvais token, après le contrôle d'existence.
type deletePostRequest struct {
	SecretToken string `json:"secretToken"`
}

type reportPostRequest struct {
	Reason string `json:"reason"`
}

type feedbackRequest struct {
	Type      string `json:"type"`
	Message   string `json:"message" validate:"trimmed_min=3"`
	Contact   string `json:"contact"`
	Page      string `json:"page"`
	URL       string `json:"url"`
	UserAgent string `json:"userAgent"`
	Honeypot  string `json:"honeypot"`
}

type suggestRequest struct {
	Text string `json:"text" validate:"min=3"`
}

// --- RÉPONSES ---

// postResponse : dates en millisecondes epoch.
type postResponse struct {
	ID          string `json:"id"`
	Game        string `json:"game"`
	Platform    string `json:"platform"`
	Region      string `json:"region"`
	Playstyle   string `json:"playstyle"`
	GroupSize   string `json:"groupSize"`
	Mic         string `json:"mic"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	TimeWindow  string `json:"timeWindow"`
	CreatedAt   int64  `json:"createdAt"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// createdPostResponse est la seule réponse qui expose le token.
type createdPostResponse struct {
	postResponse
	SecretToken string `json:"secretToken"`
	Reports     int    `json:"reports"`
}

type rankedPostResponse struct {
	postResponse
	MatchScore *int   `json:"matchScore,omitempty"`
	MatchLabel string `json:"matchLabel,omitempty"`
}

type pageResponse struct {
	Items      []rankedPostResponse `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- MAPPERS ---

func toPostResponse(p domain.PublicPost) postResponse {
	return postResponse{
		ID:          p.ID,
		Game:        p.Game,
		Platform:    p.Platform,
		Region:      p.Region,
		Playstyle:   p.Playstyle,
		GroupSize:   p.GroupSize,
		Mic:         p.Mic,
		Description: p.Description,
		Contact:     p.Contact,
		TimeWindow:  p.TimeWindow,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		ExpiresAt:   p.ExpiresAt.UnixMilli(),
	}
}

func toCreatedPostResponse(p *domain.Post) createdPostResponse {
	return createdPostResponse{
		postResponse: toPostResponse(p.Public()),
		SecretToken:  p.SecretToken,
		Reports:      p.Reports,
	}
}

func toPageResponse(page *domain.Page) pageResponse {
	items := make([]rankedPostResponse, len(page.Items))
	for i, it := range page.Items {
		items[i] = rankedPostResponse{postResponse: toPostResponse(it.PublicPost)}
		if it.Scored {
			score := it.Score
			items[i].MatchScore = &score
			items[i].MatchLabel = it.Label
		}
	}
	return pageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	}
}
