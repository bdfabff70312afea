// Package game parses baccarat result posts published by the source
// channels.
//
// A post looks like
//
//	#N1234. 3(K♠️3♥️) - ✅6(4♦️2♣️) #T9
//
// where the first hand is the player's and the second the banker's. Each
// hand is its point total followed by its cards in parentheses.
package game

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/flemzord/bacbot/internal/suit"
)

// Sentinel parse errors.
var (
	ErrNoGameNumber = errors.New("game: no game number")
	ErrNoHands      = errors.New("game: no hands")
)

var (
	numberRe = regexp.MustCompile(`#N\s*(\d+)`)
	handRe   = regexp.MustCompile(`(\d+)\s*\(([^)]*)\)`)
	rankRe   = regexp.MustCompile(`^(10|[2-9]|[AJQK])`)
)

// inProgressMarkers flag a post that the source will edit again once the
// hand is dealt out.
var inProgressMarkers = []string{"⏰", "▶", "🕐"}

// Card is a single dealt card. Rank is empty when the post omitted it.
type Card struct {
	Rank string
	Suit suit.Suit
}

// Hand is one side of a game.
type Hand struct {
	Points int
	Cards  []Card
}

// Suits returns the suits in the hand in dealing order, duplicates included.
func (h Hand) Suits() []suit.Suit {
	out := make([]suit.Suit, 0, len(h.Cards))
	for _, c := range h.Cards {
		out = append(out, c.Suit)
	}
	return out
}

// FirstSuit returns the suit of the first card.
func (h Hand) FirstSuit() (suit.Suit, bool) {
	if len(h.Cards) == 0 {
		return 0, false
	}
	return h.Cards[0].Suit, true
}

// Has reports whether any card in the hand has suit s.
func (h Hand) Has(s suit.Suit) bool {
	for _, c := range h.Cards {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// Side names the winner of a game.
type Side string

// Possible winners.
const (
	SidePlayer Side = "player"
	SideBanker Side = "banker"
	SideTie    Side = "tie"
)

// Game is a parsed result post.
type Game struct {
	Number int
	Player Hand
	Banker Hand

	// Final is false while the post carries an in-progress marker.
	Final bool
}

// Winner compares the hands' points.
func (g Game) Winner() Side {
	switch {
	case g.Player.Points > g.Banker.Points:
		return SidePlayer
	case g.Banker.Points > g.Player.Points:
		return SideBanker
	}
	return SideTie
}

// Parse extracts a Game from a post. The banker hand is left empty when
// the post only shows the player's.
func Parse(text string) (Game, error) {
	m := numberRe.FindStringSubmatch(text)
	if m == nil {
		return Game{}, ErrNoGameNumber
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Game{}, ErrNoGameNumber
	}

	hands := handRe.FindAllStringSubmatch(text, 2)
	if len(hands) == 0 {
		return Game{}, ErrNoHands
	}

	g := Game{Number: n, Final: IsFinal(text)}
	g.Player = parseHand(hands[0])
	if len(hands) > 1 {
		g.Banker = parseHand(hands[1])
	}
	return g, nil
}

// IsFinal reports whether the post carries no in-progress marker.
func IsFinal(text string) bool {
	for _, marker := range inProgressMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

func parseHand(m []string) Hand {
	points, _ := strconv.Atoi(m[1])
	return Hand{Points: points, Cards: parseCards(m[2])}
}

// parseCards walks the card list, pairing each suit glyph with the rank
// that immediately precedes it. Emoji variation selectors and separators
// are skipped.
func parseCards(s string) []Card {
	var cards []Card
	var rank string
	for len(s) > 0 {
		if r := rankRe.FindString(s); r != "" {
			rank = r
			s = s[len(r):]
			continue
		}
		ch, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if st, ok := suit.Parse(ch); ok {
			cards = append(cards, Card{Rank: rank, Suit: st})
			rank = ""
		}
	}
	return cards
}
