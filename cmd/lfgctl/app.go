package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jdw0903/EasyLFG/internal/client"
	"github.com/jdw0903/EasyLFG/internal/core/domain"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
	"github.com/jdw0903/EasyLFG/internal/core/services"
	"github.com/jdw0903/EasyLFG/internal/view"
)

// Dernière liste reçue, affichée quand l'API est injoignable.
const cacheKey = "easylfg_cached_posts"

type app struct {
	api   *client.Client
	store ports.KeyValueStore
	own   *services.Ownership
	out   io.Writer
	now   ports.Clock
}

func newApp(api *client.Client, store ports.KeyValueStore, out io.Writer) *app {
	return &app{
		api:   api,
		store: store,
		own:   services.NewOwnership(store),
		out:   out,
		now:   time.Now,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return a.list(ctx, rest)
	case "create":
		return a.create(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "report":
		return a.report(ctx, rest)
	case "feedback":
		return a.feedback(ctx, rest)
	case "suggest":
		return a.suggest(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// --- LIST ---

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var q domain.Query
	var sort string
	fs.StringVar(&q.Game, "game", "", "game name (substring)")
	fs.StringVar(&q.Platform, "platform", "", "platform (exact)")
	fs.StringVar(&q.Region, "region", "", "region (exact)")
	fs.BoolVar(&q.Mine, "mine", false, "only posts created from this machine")
	fs.BoolVar(&q.NowOnly, "now", false, "only posts playing now or within 1-2 hours")
	fs.StringVar(&sort, "sort", "newest", "newest | oldest | expiresSoon | gameAZ")
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.BoolVar(&q.Match, "match", false, "rank posts by match score")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q.Game = strings.TrimSpace(q.Game)
	q.Sort = domain.ParseSort(sort)

	now := a.now()
	posts, err := a.api.ListPosts(ctx, domain.Filter{})
	if err != nil {
		cached, ok := a.cachedPosts(now)
		if !ok {
			return err
		}
		fmt.Fprintln(a.out, "⚠️  Offline: showing the last known posts.")
		posts = cached
	} else {
		a.cachePosts(posts)
	}

	page := services.Paginate(services.ApplyQuery(posts, q, a.own.IsOwned), q.Page)
	a.render(page, now)

	// Lien partageable équivalent
	if v := q.Values().Encode(); v != "" {
		fmt.Fprintf(a.out, "query: ?%s\n", v)
	}
	return nil
}

func (a *app) render(page domain.Page, now time.Time) {
	if page.Total == 0 {
		fmt.Fprintln(a.out, "No active posts match your filters.")
		return
	}
	for _, p := range page.Items {
		var tags []string
		if a.own.IsOwned(p.ID) {
			tags = append(tags, "[My post]")
		}
		if badge := view.MatchBadge(p.Scored, p.Score, p.Label); badge != "" {
			tags = append(tags, "["+badge+"]")
		}

		parts := []string{view.FormatGameName(p.Game), p.Platform}
		for _, s := range []string{p.Region, p.Playstyle, p.GroupSize, p.TimeWindow} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if p.Mic != "" {
			parts = append(parts, "mic: "+p.Mic)
		}

		header := strings.Join(parts, " · ")
		if len(tags) > 0 {
			header = strings.Join(tags, " ") + " " + header
		}
		fmt.Fprintf(a.out, "%s  (%s)\n", header, p.ID)
		if p.Description != "" {
			fmt.Fprintf(a.out, "    %s\n", p.Description)
		}
		if p.Contact != "" {
			fmt.Fprintf(a.out, "    contact: %s\n", p.Contact)
		}
		fmt.Fprintf(a.out, "    posted %s · %s\n", view.RelativeTime(p.CreatedAt, now), view.TimeRemaining(p.ExpiresAt, now))
	}
	fmt.Fprintf(a.out, "page %d/%d · %d posts\n", page.Page, page.TotalPages, page.Total)
}

// cachePosts : un échec n'empêche pas l'affichage, il est seulement signalé.
func (a *app) cachePosts(posts []domain.PublicPost) {
	raw, err := json.Marshal(posts)
	if err == nil {
		err = a.store.Set(cacheKey, string(raw))
	}
	if err != nil {
		fmt.Fprintf(a.out, "⚠️  Offline cache not updated: %v\n", err)
	}
}

// cachedPosts ne renvoie que les posts encore actifs.
func (a *app) cachedPosts(now time.Time) ([]domain.PublicPost, bool) {
	raw, ok := a.store.Get(cacheKey)
	if !ok {
		return nil, false
	}
	var posts []domain.PublicPost
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		return nil, false
	}
	active := posts[:0]
	for _, p := range posts {
		if p.IsActive(now) {
			active = append(active, p)
		}
	}
	return active, true
}

// --- CREATE ---

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var f domain.PostFields
	var contactType string
	var ttl int
	fs.StringVar(&f.Game, "game", "", "game (required)")
	fs.StringVar(&f.Platform, "platform", "", "platform (required)")
	fs.StringVar(&f.Region, "region", "", "region")
	fs.StringVar(&f.Playstyle, "playstyle", "", "playstyle")
	fs.StringVar(&f.GroupSize, "group", "", "group size")
	fs.StringVar(&f.Mic, "mic", "", "mic (default Preferred)")
	fs.StringVar(&f.TimeWindow, "window", domain.TimeWindowNow, "time window")
	fs.StringVar(&f.Description, "desc", "", "description")
	fs.StringVar(&f.Contact, "contact", "", "contact (defaults to the saved one)")
	fs.StringVar(&contactType, "contact-type", "discord", "contact type saved with -contact")
	fs.IntVar(&ttl, "ttl", 0, "lifetime in minutes (60-1440, default 1440)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if f.Contact == "" {
		if saved, ok := a.own.LoadContact(); ok {
			f.Contact = saved.Value
		}
	} else if err := a.own.SaveContact(services.ContactRecord{Type: contactType, Value: f.Contact}); err != nil {
		return err
	}

	var ttlMinutes *int
	if ttl != 0 {
		ttlMinutes = &ttl
	}

	post, err := a.api.CreatePost(ctx, f, ttlMinutes)
	if err != nil {
		return err
	}
	if err := a.own.Remember(post.ID, post.SecretToken); err != nil {
		return fmt.Errorf("post %s created but its token could not be saved: %w", post.ID, err)
	}

	fmt.Fprintf(a.out, "✅ Post created: %s (%s, expires %s)\n",
		post.ID, view.FormatGameName(post.Game), view.TimeRemaining(post.ExpiresAt, a.now()))
	return nil
}

// --- DELETE / REPORT ---

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id := args[0]

	token, ok := a.own.Token(id)
	if !ok {
		return fmt.Errorf("no delete token stored for post %s", id)
	}

	err := a.api.DeletePost(ctx, id, token)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		// Déjà expiré ou supprimé : le token ne sert plus
		_ = a.own.Forget(id)
		return fmt.Errorf("post %s no longer exists", id)
	default:
		return err
	}

	if err := a.own.Forget(id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "🗑️  Post %s deleted\n", id)
	return nil
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	reason := fs.String("reason", "", "why this post is a problem")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: report [-reason text] <id>")
	}

	if err := a.api.ReportPost(ctx, fs.Arg(0), *reason); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "🚩 Thanks, the post has been reported.")
	return nil
}

// --- FEEDBACK ---

func (a *app) feedback(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feedback", flag.ContinueOnError)
	var cmd ports.SubmitFeedbackCmd
	fs.StringVar(&cmd.Type, "type", "idea", "idea | bug | other")
	fs.StringVar(&cmd.Message, "message", "", "your message (required)")
	fs.StringVar(&cmd.Contact, "contact", "", "how to reach you (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Page = "lfgctl"
	cmd.UserAgent = "lfgctl"

	if err := a.api.SendFeedback(ctx, cmd); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "📬 Thanks for the feedback!")
	return nil
}

func (a *app) suggest(ctx context.Context, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if err := a.api.Suggest(ctx, text); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "📩 Suggestion sent.")
	return nil
}
