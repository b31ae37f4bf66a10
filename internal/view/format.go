// Package view contient les helpers d'affichage. Le store garde toujours la saisie brute.
package view

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var knownGames = map[string]string{
	"left 4 dead":       "Left 4 Dead",
	"left 4 dead 2":     "Left 4 Dead 2",
	"valorant":          "Valorant",
	"apex legends":      "Apex Legends",
	"overwatch 2":       "Overwatch 2",
	"diablo 2":          "Diablo II",
	"diablo ii":         "Diablo II",
	"diablo 3":          "Diablo III",
	"diablo iii":        "Diablo III",
	"diablo 4":          "Diablo IV",
	"diablo iv":         "Diablo IV",
	"cs2":               "CS2",
	"counter strike 2":  "Counter-Strike 2",
	"league of legends": "League of Legends",
	"rocket league":     "Rocket League",
	"elden ring":        "Elden Ring",
	"path of exile":     "Path of Exile",
	"path of exile 2":   "Path of Exile 2",
	"warframe":          "Warframe",
	"fortnite":          "Fortnite",
}

var (
	romanNumeral = regexp.MustCompile(`^(i|ii|iii|iv|v|vi|vii|viii|ix|x)$`)
	acronym      = regexp.MustCompile(`^[a-z]{2,4}$`)
)

var smallWords = map[string]bool{
	"and": true, "or": true, "the": true, "of": true, "for": true, "in": true,
	"on": true, "at": true, "to": true, "vs": true, "with": true,
}

// FormatGameName donne le nom d'affichage d'un jeu : table des jeux connus,
// sinon casse "titre" avec chiffres romains et acronymes en majuscules.
func FormatGameName(input string) string {
	raw := strings.ToLower(strings.TrimSpace(input))
	if raw == "" {
		return ""
	}
	if name, ok := knownGames[raw]; ok {
		return name
	}

	words := strings.Split(raw, " ")
	last := len(words) - 1
	for i, w := range words {
		switch {
		case w == "":
		case romanNumeral.MatchString(w):
			words[i] = strings.ToUpper(w)
		case smallWords[w] && i != 0 && i != last:
			// reste en minuscules
		case smallWords[w]:
			words[i] = capitalize(w)
		case acronym.MatchString(w):
			words[i] = strings.ToUpper(w)
		default:
			words[i] = capitalize(w)
		}
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + w[size:]
}

// RelativeTime : "just now", "12 min ago", "3h ago", "2d ago".
func RelativeTime(t, now time.Time) string {
	minutes := int(now.Sub(t) / time.Minute)
	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	case minutes < 60*24:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/(60*24))
	}
}

// TimeRemaining arrondit à l'unité la plus proche ; "expiring soon" une fois l'échéance passée.
func TimeRemaining(expiresAt, now time.Time) string {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return "expiring soon"
	}
	minutes := int(math.Round(diff.Minutes()))
	if minutes < 60 {
		return fmt.Sprintf("%d min left", minutes)
	}
	hours := int(math.Round(float64(minutes) / 60))
	if hours < 24 {
		return fmt.Sprintf("%dh left", hours)
	}
	return fmt.Sprintf("%dd left", int(math.Round(float64(hours)/24)))
}

// MatchBadge : "Match 7 – good match", vide hors mode match.
func MatchBadge(scored bool, score int, label string) string {
	if !scored {
		return ""
	}
	return fmt.Sprintf("Match %d – %s", score, label)
}
