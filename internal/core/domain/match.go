package domain

import "strings"

const (
	LabelVeryGood = "very good match"
	LabelGood     = "good match"
	LabelPartial  = "partial match"
	LabelNone     = "no strong match"
)

type MatchCriteria struct {
	Game       string
	Platform   string
	Region     string
	WantNowish bool
}

// Score calcule un score additif de pertinence et son libellé.
// Les poids font partie du contrat : jeu 4/2, plateforme 3, région 2, créneau 3/2/1.
func Score(p PublicPost, c MatchCriteria) (int, string) {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	score := 0

	if c.Game != "" {
		want, have := norm(c.Game), norm(p.Game)
		switch {
		case want != "" && have == want:
			score += 4
		case strings.Contains(have, want) || strings.Contains(want, have):
			score += 2
		}
	}

	if c.Platform != "" && p.Platform == c.Platform {
		score += 3
	}

	// Région : comparaison brute, sans normalisation
	if c.Region != "" && p.Region == c.Region {
		score += 2
	}

	if c.WantNowish {
		switch p.TimeWindow {
		case TimeWindowNow:
			score += 3
		case TimeWindowSoon:
			score += 2
		case TimeWindowTonight:
			score++
		}
	}

	return score, Label(score)
}

func Label(score int) string {
	switch {
	case score >= 9:
		return LabelVeryGood
	case score >= 6:
		return LabelGood
	case score >= 3:
		return LabelPartial
	default:
		return LabelNone
	}
}
