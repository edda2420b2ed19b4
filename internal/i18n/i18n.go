// Package i18n localises the player labels and result messages shown next to the board.
package i18n

import (
	"net/http"
	"strings"

	"ctchen222/Gomoku/internal/game"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

const (
	keyBlack = "Black"
	keyWhite = "White"
	keyWins  = "%s wins"
	keyDraw  = "Draw"
	keyTurn  = "%s to move"
)

var (
	supported = []language.Tag{language.English, language.SimplifiedChinese}
	matcher   = language.NewMatcher(supported)
)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		keyBlack: "Black",
		keyWhite: "White",
		keyWins:  "%s wins",
		keyDraw:  "Draw",
		keyTurn:  "%s to move",
	},
	language.SimplifiedChinese: {
		keyBlack: "黑棋",
		keyWhite: "白棋",
		keyWins:  "%s获胜！",
		keyDraw:  "平局！",
		keyTurn:  "轮到%s",
	},
}

func init() {
	for tag, messages := range catalog {
		for key, msg := range messages {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// Default returns the fallback language.
func Default() language.Tag {
	return supported[0]
}

// Supported returns the languages that have a catalog.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match returns the supported tag that best fits the given tags.
func Match(tags ...language.Tag) language.Tag {
	if len(tags) == 0 {
		return Default()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default()
	}
	return supported[index]
}

// Parse matches a single language value such as "zh" or "en-US".
func Parse(value string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return Default()
	}
	return Match(tag)
}

// ResolveTag picks the language for a request: the lang query parameter
// first, then Accept-Language, then the default.
func ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return Default()
	}
	if value := strings.TrimSpace(r.URL.Query().Get(LangParam)); value != "" {
		return Parse(value)
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return Match(tags...)
		}
	}
	return Default()
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// PlayerLabel returns the localised name of a player, or "" for None.
func PlayerLabel(p *message.Printer, s game.Stone) string {
	switch s {
	case game.Black:
		return p.Sprintf(keyBlack)
	case game.White:
		return p.Sprintf(keyWhite)
	default:
		return ""
	}
}

// ResultMessage returns the localised terminal message, or "" while the game runs.
func ResultMessage(p *message.Printer, s game.State) string {
	switch s.Status {
	case game.StatusWin:
		return p.Sprintf(keyWins, PlayerLabel(p, s.Winner))
	case game.StatusDraw:
		return p.Sprintf(keyDraw)
	default:
		return ""
	}
}

// TurnMessage returns the localised "<player> to move" line while the game runs.
func TurnMessage(p *message.Printer, s game.State) string {
	if s.Status != game.StatusInProgress {
		return ""
	}
	return p.Sprintf(keyTurn, PlayerLabel(p, s.Next))
}
