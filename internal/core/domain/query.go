package domain

import (
	"net/url"
	"strconv"
	"strings"
)

const PageSize = 10

// Créneaux horaires reconnus par le filtre "nowOnly" et le score de match.
const (
	TimeWindowNow     = "Now"
	TimeWindowSoon    = "Next 1–2 hours"
	TimeWindowTonight = "Tonight"
)

type SortOrder string

const (
	SortNewest      SortOrder = "newest"
	SortOldest      SortOrder = "oldest"
	SortExpiresSoon SortOrder = "expiresSoon"
	SortGameAZ      SortOrder = "gameAZ"
)

// ParseSort retombe sur "newest" pour toute valeur inconnue.
func ParseSort(raw string) SortOrder {
	switch s := SortOrder(raw); s {
	case SortOldest, SortExpiresSoon, SortGameAZ:
		return s
	default:
		return SortNewest
	}
}

// Filter : tous les critères sont optionnels et cumulatifs.
type Filter struct {
	Game     string
	Platform string
	Region   string
	Mine     bool
	NowOnly  bool
}

// Query encapsule l'état partageable d'une recherche (filtres, tri, page, mode match).
type Query struct {
	Filter
	Sort  SortOrder
	Page  int
	Match bool
	Focus string
}

// Criteria : en mode match, les critères viennent des filtres courants.
func (q Query) Criteria() MatchCriteria {
	return MatchCriteria{
		Game:       q.Game,
		Platform:   q.Platform,
		Region:     q.Region,
		WantNowish: q.NowOnly,
	}
}

// ParseQuery lit le vocabulaire des liens partageables.
func ParseQuery(v url.Values) Query {
	page, _ := strconv.Atoi(v.Get("page"))
	return Query{
		Filter: Filter{
			Game:     strings.TrimSpace(v.Get("game")),
			Platform: v.Get("platform"),
			Region:   v.Get("region"),
			Mine:     v.Get("mine") == "1",
			NowOnly:  v.Get("nowOnly") == "1",
		},
		Sort:  ParseSort(v.Get("sort")),
		Page:  page,
		Match: v.Get("match") == "1",
		Focus: v.Get("focus"),
	}
}

// Values est l'inverse de ParseQuery ; les valeurs par défaut sont omises.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Game != "" {
		v.Set("game", q.Game)
	}
	if q.Platform != "" {
		v.Set("platform", q.Platform)
	}
	if q.Region != "" {
		v.Set("region", q.Region)
	}
	if q.Mine {
		v.Set("mine", "1")
	}
	if q.NowOnly {
		v.Set("nowOnly", "1")
	}
	if q.Sort != "" && q.Sort != SortNewest {
		v.Set("sort", string(q.Sort))
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Match {
		v.Set("match", "1")
	}
	if q.Focus != "" {
		v.Set("focus", q.Focus)
	}
	return v
}

// RankedPost porte le score éphémère calculé pour l'affichage.
type RankedPost struct {
	PublicPost
	Scored bool
	Score  int
	Label  string
}

type Page struct {
	Items      []RankedPost
	Total      int
	Page       int
	TotalPages int
}
