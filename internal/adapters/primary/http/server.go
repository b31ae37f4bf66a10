package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
)

const (
	msgTooManyRequests = "Too many requests, please try again later."
	msgTooManyPosts    = "Too many posts from this IP, please slow down."
	msgTooManyActions  = "Too many actions from this IP, please slow down."
	msgTooManyFeedback = "Too many feedback submissions, please slow down."
)

// Limiters : un limiteur nil désactive la limite correspondante.
type Limiters struct {
	General  ports.RateLimiter
	Create   ports.RateLimiter
	Mutate   ports.RateLimiter
	Feedback ports.RateLimiter
}

type Server struct {
	posts    ports.PostService
	feedback ports.FeedbackService
	limits   Limiters
	validate *validator.Validate
}

func NewServer(posts ports.PostService, feedback ports.FeedbackService, limits Limiters) *Server {
	return &Server{
		posts:    posts,
		feedback: feedback,
		limits:   limits,
		validate: newValidator(),
	}
}

// Handler renvoie le routeur complet, limite générale et en-têtes de sécurité inclus.
// CORS et tracing sont posés par l'appelant.
func (s *Server) Handler() http.Handler {
	create := RateLimit(s.limits.Create, msgTooManyPosts)
	mutate := RateLimit(s.limits.Mutate, msgTooManyActions)
	feedback := RateLimit(s.limits.Feedback, msgTooManyFeedback)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /posts", JSONHandler(s.listPosts))
	mux.Handle("GET /posts/search", JSONHandler(s.searchPosts))
	mux.Handle("POST /posts", create(JSONHandler(s.createPost)))
	mux.Handle("DELETE /posts/{id}", mutate(JSONHandler(s.deletePost)))
	mux.Handle("POST /posts/{id}/report", mutate(JSONHandler(s.reportPost)))
	mux.Handle("POST /feedback", feedback(JSONHandler(s.submitFeedback)))
	mux.Handle("POST /suggest", JSONHandler(s.suggest))

	return Chain(SecurityHeaders, RateLimit(s.limits.General, msgTooManyRequests))(mux)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// --- QUERIES (Read) ---

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	posts, err := s.posts.ListPosts(r.Context(), domain.Filter{
		Game:     q.Get("game"),
		Platform: q.Get("platform"),
		Region:   q.Get("region"),
	})
	if err != nil {
		return err
	}

	out := make([]postResponse, len(posts))
	for i, p := range posts {
		out[i] = toPostResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) searchPosts(w http.ResponseWriter, r *http.Request) error {
	page, err := s.posts.SearchPosts(r.Context(), domain.ParseQuery(r.URL.Query()))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
	return nil
}

// --- COMMANDS (Write) ---

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) error {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	post, err := s.posts.CreatePost(r.Context(), ports.CreatePostCmd{
		Fields:     req.fields(),
		TTLMinutes: req.TTLMinutes.value,
		Honeypot:   req.Honeypot,
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, toCreatedPostResponse(post))
	return nil
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) error {
	var req deletePostRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if err := s.posts.DeletePost(r.Context(), r.PathValue("id"), req.SecretToken); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
	return nil
}

func (s *Server) reportPost(w http.ResponseWriter, r *http.Request) error {
	var req reportPostRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if err := s.posts.ReportPost(r.Context(), r.PathValue("id"), req.Reason); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
	return nil
}

func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) error {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	// Le honeypot est vérifié par le service, avant toute validation
	if strings.TrimSpace(req.Honeypot) == "" {
		if err := s.check(req); err != nil {
			return err
		}
	}

	err := s.feedback.SubmitFeedback(r.Context(), ports.SubmitFeedbackCmd{
		Type:      req.Type,
		Message:   req.Message,
		Contact:   req.Contact,
		Page:      req.Page,
		URL:       req.URL,
		UserAgent: req.UserAgent,
		Honeypot:  req.Honeypot,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
	return nil
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) error {
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if err := s.check(req); err != nil {
		slog.Debug("Suggestion rejected", "error", err)
		return err
	}

	if err := s.feedback.SubmitSuggestion(r.Context(), req.Text); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
	return nil
}
