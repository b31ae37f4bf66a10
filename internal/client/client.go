// Package client est le client HTTP typé de l'API EasyLFG.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
)

var ErrRateLimited = errors.New("rate limited")

// APIError porte le statut et le message {error} renvoyés par l'API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap rattache l'erreur aux sentinelles du domaine.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- WIRE ---

type wirePost struct {
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

	SecretToken string `json:"secretToken,omitempty"`
	Reports     int    `json:"reports,omitempty"`
	MatchScore  *int   `json:"matchScore,omitempty"`
	MatchLabel  string `json:"matchLabel,omitempty"`
}

func (w wirePost) public() domain.PublicPost {
	return domain.PublicPost{
		ID:          w.ID,
		Game:        w.Game,
		Platform:    w.Platform,
		Region:      w.Region,
		Playstyle:   w.Playstyle,
		GroupSize:   w.GroupSize,
		Mic:         w.Mic,
		TimeWindow:  w.TimeWindow,
		Description: w.Description,
		Contact:     w.Contact,
		CreatedAt:   time.UnixMilli(w.CreatedAt),
		ExpiresAt:   time.UnixMilli(w.ExpiresAt),
	}
}

type wirePage struct {
	Items      []wirePost `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// --- API ---

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListPosts : GET /posts, plus récents d'abord.
func (c *Client) ListPosts(ctx context.Context, f domain.Filter) ([]domain.PublicPost, error) {
	q := url.Values{}
	for k, v := range map[string]string{"game": f.Game, "platform": f.Platform, "region": f.Region} {
		if v != "" {
			q.Set(k, v)
		}
	}

	var raw []wirePost
	if err := c.do(ctx, http.MethodGet, "/posts?"+q.Encode(), nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.PublicPost, len(raw))
	for i, p := range raw {
		out[i] = p.public()
	}
	return out, nil
}

// SearchPosts : filtrage, tri et pagination côté serveur ("mine" y est ignoré).
func (c *Client) SearchPosts(ctx context.Context, query domain.Query) (*domain.Page, error) {
	var raw wirePage
	if err := c.do(ctx, http.MethodGet, "/posts/search?"+query.Values().Encode(), nil, &raw); err != nil {
		return nil, err
	}

	page := &domain.Page{
		Items:      make([]domain.RankedPost, len(raw.Items)),
		Total:      raw.Total,
		Page:       raw.Page,
		TotalPages: raw.TotalPages,
	}
	for i, p := range raw.Items {
		page.Items[i] = domain.RankedPost{PublicPost: p.public()}
		if p.MatchScore != nil {
			page.Items[i].Scored = true
			page.Items[i].Score = *p.MatchScore
			page.Items[i].Label = p.MatchLabel
		}
	}
	return page, nil
}

// CreatePost renvoie le post complet, token compris : c'est la seule occasion de le récupérer.
func (c *Client) CreatePost(ctx context.Context, fields domain.PostFields, ttlMinutes *int) (*domain.Post, error) {
	body := map[string]any{
		"game":        fields.Game,
		"platform":    fields.Platform,
		"region":      fields.Region,
		"playstyle":   fields.Playstyle,
		"groupSize":   fields.GroupSize,
		"mic":         fields.Mic,
		"description": fields.Description,
		"contact":     fields.Contact,
		"timeWindow":  fields.TimeWindow,
	}
	if ttlMinutes != nil {
		body["ttlMinutes"] = *ttlMinutes
	}

	var raw wirePost
	if err := c.do(ctx, http.MethodPost, "/posts", body, &raw); err != nil {
		return nil, err
	}
	return &domain.Post{PublicPost: raw.public(), SecretToken: raw.SecretToken, Reports: raw.Reports}, nil
}

func (c *Client) DeletePost(ctx context.Context, postID, token string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), map[string]string{"secretToken": token}, nil)
}

func (c *Client) ReportPost(ctx context.Context, postID, reason string) error {
	return c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/report", map[string]string{"reason": reason}, nil)
}

func (c *Client) SendFeedback(ctx context.Context, cmd ports.SubmitFeedbackCmd) error {
	return c.do(ctx, http.MethodPost, "/feedback", map[string]string{
		"type":      cmd.Type,
		"message":   cmd.Message,
		"contact":   cmd.Contact,
		"page":      cmd.Page,
		"url":       cmd.URL,
		"userAgent": cmd.UserAgent,
	}, nil)
}

func (c *Client) Suggest(ctx context.Context, text string) error {
	return c.do(ctx, http.MethodPost, "/suggest", map[string]string{"text": text}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
