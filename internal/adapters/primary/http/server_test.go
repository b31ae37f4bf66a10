package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/eventbroker"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/ratelimit"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/repository"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/security"
	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/services"
)

type failingMailer struct{}

func (failingMailer) SendFeedback(context.Context, *domain.Feedback) error {
	return errors.New("provider down")
}

type testAPI struct {
	handler http.Handler
	now     time.Time
}

func newTestAPI(t *testing.T, limits Limiters) *testAPI {
	t.Helper()
	api := &testAPI{now: time.UnixMilli(1_700_000_000_000)}
	clock := func() time.Time { return api.now }

	posts := services.NewPostService(repository.NewMemoryRepo(), security.NewRandomTokenIssuer(16), eventbroker.NoopPublisher{}, clock)
	feedback := services.NewFeedbackService(nil, time.Second, clock)
	api.handler = NewServer(posts, feedback, limits).Handler()
	return api
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if got := decode[errorResponse](t, rec).Error; got != msg {
		t.Fatalf("error = %q, want %q", got, msg)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, Limiters{})
	rec := api.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !decode[okResponse](t, rec).OK {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("security headers missing")
	}
}

func TestCreateAndListPost(t *testing.T) {
	api := newTestAPI(t, Limiters{})

	rec := api.do(t, http.MethodPost, "/posts", `{"game":"  diablo 2 ","platform":"PC","ttlMinutes":"90"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[createdPostResponse](t, rec)
	if created.SecretToken == "" || created.ID == "" {
		t.Fatalf("missing id/token: %+v", created)
	}
	if created.Game != "diablo 2" || created.Mic != domain.DefaultMic {
		t.Fatalf("unexpected fields %+v", created)
	}
	if created.ExpiresAt-created.CreatedAt != 90*60*1000 {
		t.Fatalf("ttl = %d ms", created.ExpiresAt-created.CreatedAt)
	}

	rec = api.do(t, http.MethodGet, "/posts?game=DIABLO", "")
	if strings.Contains(rec.Body.String(), "secretToken") || strings.Contains(rec.Body.String(), created.SecretToken) {
		t.Fatalf("list leaks the token: %s", rec.Body.String())
	}
	list := decode[[]postResponse](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}
}

func TestCreatePostTTLVariants(t *testing.T) {
	cases := map[string]int64{
		`"ttlMinutes":30`:      60,
		`"ttlMinutes":"abc"`:   1440,
		`"ttlMinutes":null`:    1440,
		`"ttlMinutes":120.9`:   120,
		`"ttlMinutes":"300mn"`: 300,
		`"ttlMinutes":5000`:    1440,
		`"ttlMinutes":1e3`:     1000,
		`"ttlMinutes":1.2e3`:   1200,
		`"ttlMinutes":-1e400`:  60,
		`"ttlMinutes":true`:    1440,

		`"ttlMinutes":-99999999999999999999`: 60,
		`"ttlMinutes":99999999999999999999`:  1440,
	}
	for field, wantMin := range cases {
		t.Run(field, func(t *testing.T) {
			api := newTestAPI(t, Limiters{})
			rec := api.do(t, http.MethodPost, "/posts", `{"game":"g","platform":"p",`+field+`}`)
			created := decode[createdPostResponse](t, rec)
			if got := created.ExpiresAt - created.CreatedAt; got != wantMin*60*1000 {
				t.Fatalf("ttl = %d min, want %d", got/60000, wantMin)
			}
		})
	}
}

func TestCreatePostErrors(t *testing.T) {
	api := newTestAPI(t, Limiters{})

	expectError(t, api.do(t, http.MethodPost, "/posts", `{"game":`), http.StatusBadRequest, "invalid JSON body")
	expectError(t, api.do(t, http.MethodPost, "/posts", `{"game":"g"}`), http.StatusBadRequest, "game and platform are required")
	expectError(t, api.do(t, http.MethodPost, "/posts", `{"game":"g","platform":"p","honeypot":"buy now"}`), http.StatusBadRequest, "Invalid request.")
	expectError(t, api.do(t, http.MethodPost, "/posts", ""), http.StatusBadRequest, "game and platform are required")

	if list := decode[[]postResponse](t, api.do(t, http.MethodGet, "/posts", "")); len(list) != 0 {
		t.Fatalf("rejected posts stored: %+v", list)
	}
}

func TestDeletePost(t *testing.T) {
	api := newTestAPI(t, Limiters{})
	created := decode[createdPostResponse](t, api.do(t, http.MethodPost, "/posts", `{"game":"g","platform":"p"}`))

	expectError(t, api.do(t, http.MethodDelete, "/posts/"+created.ID, `{}`), http.StatusForbidden, "Invalid token")
	expectError(t, api.do(t, http.MethodDelete, "/posts/"+created.ID, `{"secretToken":"nope"}`), http.StatusForbidden, "Invalid token")
	expectError(t, api.do(t, http.MethodDelete, "/posts/unknown", `{"secretToken":"`+created.SecretToken+`"}`), http.StatusNotFound, "Post not found")

	rec := api.do(t, http.MethodDelete, "/posts/"+created.ID, `{"secretToken":"`+created.SecretToken+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d %s", rec.Code, rec.Body.String())
	}
	expectError(t, api.do(t, http.MethodDelete, "/posts/"+created.ID, `{"secretToken":"`+created.SecretToken+`"}`), http.StatusNotFound, "Post not found")
}

func TestExpiredPostIsGone(t *testing.T) {
	api := newTestAPI(t, Limiters{})
	created := decode[createdPostResponse](t, api.do(t, http.MethodPost, "/posts", `{"game":"g","platform":"p","ttlMinutes":60}`))

	api.now = api.now.Add(time.Hour)
	if list := decode[[]postResponse](t, api.do(t, http.MethodGet, "/posts", "")); len(list) != 0 {
		t.Fatalf("expired post listed: %+v", list)
	}
	expectError(t, api.do(t, http.MethodPost, "/posts/"+created.ID+"/report", `{}`), http.StatusNotFound, "Post not found")
}

func TestReportPost(t *testing.T) {
	api := newTestAPI(t, Limiters{})
	created := decode[createdPostResponse](t, api.do(t, http.MethodPost, "/posts", `{"game":"g","platform":"p"}`))

	rec := api.do(t, http.MethodPost, "/posts/"+created.ID+"/report", `{"reason":"spam"}`)
	if rec.Code != http.StatusOK || !decode[okResponse](t, rec).OK {
		t.Fatalf("report = %d %s", rec.Code, rec.Body.String())
	}
	// Corps absent accepté
	if rec := api.do(t, http.MethodPost, "/posts/"+created.ID+"/report", ""); rec.Code != http.StatusOK {
		t.Fatalf("report without body = %d", rec.Code)
	}
}

func TestSearchPosts(t *testing.T) {
	api := newTestAPI(t, Limiters{})
	for _, body := range []string{
		`{"game":"Valorant","platform":"PC","region":"NA","timeWindow":"Now"}`,
		`{"game":"Valorant Mobile","platform":"Mobile"}`,
		`{"game":"Fortnite","platform":"PC"}`,
	} {
		api.do(t, http.MethodPost, "/posts", body)
		api.now = api.now.Add(time.Second)
	}

	rec := api.do(t, http.MethodGet, "/posts/search?game=valorant&platform=PC&region=NA&nowOnly=1&match=1", "")
	page := decode[pageResponse](t, rec)
	if page.Total != 1 || page.TotalPages != 1 || page.Page != 1 {
		t.Fatalf("page = %+v", page)
	}
	first := page.Items[0]
	if first.MatchScore == nil || *first.MatchScore != 12 || first.MatchLabel != domain.LabelVeryGood {
		t.Fatalf("first = %+v", first)
	}

	rec = api.do(t, http.MethodGet, "/posts/search?sort=gameAZ", "")
	if strings.Contains(rec.Body.String(), "matchScore") {
		t.Fatal("score exposed outside match mode")
	}
	page = decode[pageResponse](t, rec)
	if len(page.Items) != 3 || page.Items[0].Game != "Fortnite" {
		t.Fatalf("gameAZ = %+v", page.Items)
	}
}

func TestFeedbackAndSuggest(t *testing.T) {
	api := newTestAPI(t, Limiters{})

	if rec := api.do(t, http.MethodPost, "/feedback", `{"message":"great site"}`); rec.Code != http.StatusOK {
		t.Fatalf("feedback = %d %s", rec.Code, rec.Body.String())
	}
	expectError(t, api.do(t, http.MethodPost, "/feedback", `{"message":"  "}`), http.StatusBadRequest,
		"Message is required and must be at least 3 characters.")
	expectError(t, api.do(t, http.MethodPost, "/feedback", `{}`), http.StatusBadRequest,
		"Message is required and must be at least 3 characters.")
	expectError(t, api.do(t, http.MethodPost, "/feedback", `{"message":"  ab  "}`), http.StatusBadRequest,
		"Message is required and must be at least 3 characters.")
	expectError(t, api.do(t, http.MethodPost, "/feedback", `{"message":"hello","honeypot":"x"}`), http.StatusBadRequest, "Invalid request.")
	// Le honeypot passe avant la validation du message
	expectError(t, api.do(t, http.MethodPost, "/feedback", `{"message":"","honeypot":"x"}`), http.StatusBadRequest, "Invalid request.")
	if rec := api.do(t, http.MethodPost, "/feedback", `{"message":" été "}`); rec.Code != http.StatusOK {
		t.Fatalf("three runes should pass: %d %s", rec.Code, rec.Body.String())
	}

	if rec := api.do(t, http.MethodPost, "/suggest", `{"text":"Deadlock"}`); rec.Code != http.StatusOK {
		t.Fatalf("suggest = %d", rec.Code)
	}
	expectError(t, api.do(t, http.MethodPost, "/suggest", `{"text":"ab"}`), http.StatusBadRequest, "Suggestion too short")
	expectError(t, api.do(t, http.MethodPost, "/suggest", `{}`), http.StatusBadRequest, "Suggestion too short")
}

func TestCheckMapsFieldErrors(t *testing.T) {
	s := NewServer(nil, nil, Limiters{})

	if err := s.check(feedbackRequest{Message: " \t a \n"}); !errors.Is(err, domain.ErrMessageTooShort) {
		t.Fatalf("feedback err = %v", err)
	}
	if err := s.check(suggestRequest{Text: "éé"}); !errors.Is(err, domain.ErrSuggestionShort) {
		t.Fatalf("suggest err = %v", err)
	}
	if err := s.check(suggestRequest{Text: "ééé"}); err != nil {
		t.Fatalf("three runes rejected: %v", err)
	}

	type other struct {
		Name string `validate:"trimmed_min=2"`
	}
	err := s.check(other{Name: " x "})
	if !errors.Is(err, domain.ErrValidation) || domain.PublicMessage(err) != "Name is invalid" {
		t.Fatalf("unmapped field err = %v", err)
	}
}

func TestFeedbackDeliveryFailure(t *testing.T) {
	posts := services.NewPostService(repository.NewMemoryRepo(), security.NewRandomTokenIssuer(16), eventbroker.NoopPublisher{}, nil)
	feedback := services.NewFeedbackService(failingMailer{}, time.Second, nil)
	api := &testAPI{handler: NewServer(posts, feedback, Limiters{}).Handler()}

	expectError(t, api.do(t, http.MethodPost, "/feedback", `{"message":"hello"}`), http.StatusInternalServerError, "Could not send feedback email")
}

func TestRateLimits(t *testing.T) {
	api := newTestAPI(t, Limiters{
		General: ratelimit.NewMemoryLimiter(100, time.Minute),
		Create:  ratelimit.NewMemoryLimiter(2, time.Minute),
	})

	for i := 0; i < 2; i++ {
		if rec := api.do(t, http.MethodPost, "/posts", `{"game":"g","platform":"p"}`); rec.Code != http.StatusCreated {
			t.Fatalf("create %d = %d", i, rec.Code)
		}
	}
	expectError(t, api.do(t, http.MethodPost, "/posts", `{"game":"g","platform":"p"}`), http.StatusTooManyRequests, msgTooManyPosts)

	// Les lectures ne consomment que la limite générale
	if rec := api.do(t, http.MethodGet, "/posts", ""); rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
}

func TestGeneralRateLimit(t *testing.T) {
	api := newTestAPI(t, Limiters{General: ratelimit.NewMemoryLimiter(1, time.Minute)})

	api.do(t, http.MethodGet, "/health", "")
	expectError(t, api.do(t, http.MethodGet, "/health", ""), http.StatusTooManyRequests, msgTooManyRequests)
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, Limiters{})
	h := CORS([]string{"http://localhost:5500"})(api.handler)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5500" {
		t.Fatalf("allowed origin not echoed: %v", rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origin allowed")
	}
}

func TestLeadingInt(t *testing.T) {
	cases := map[string]*int{
		"42":    ptr(42),
		" 7 ":   ptr(7),
		"-5":    ptr(-5),
		"90min": ptr(90),
		"":      nil,
		"abc":   nil,
		"-":     nil,
	}
	for in, want := range cases {
		got := leadingInt(in)
		if (got == nil) != (want == nil) || (got != nil && *got != *want) {
			t.Errorf("leadingInt(%q) = %v, want %v", in, got, want)
		}
	}
}

func ptr(i int) *int { return &i }
