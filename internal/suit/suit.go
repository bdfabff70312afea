// Package suit defines the four playing-card suits used in baccarat results
// and the fixed mirror pairing applied to them when building predictions.
package suit

import "fmt"

// Suit is a playing-card suit, stored as its solid Unicode glyph.
type Suit rune

// The four suits.
const (
	Spade   Suit = '♠'
	Heart   Suit = '♥'
	Diamond Suit = '♦'
	Club    Suit = '♣'
)

// All lists the suits in display order.
var All = [4]Suit{Spade, Heart, Diamond, Club}

// mirrors pairs each suit with its partner. The pairing is two disjoint
// 2-cycles, so Mirror is an involution with no fixed points.
var mirrors = map[Suit]Suit{
	Diamond: Spade,
	Spade:   Diamond,
	Heart:   Club,
	Club:    Heart,
}

// labels is the display table used in posted predictions.
var labels = map[Suit]string{
	Spade:   "♠️",
	Heart:   "❤️",
	Diamond: "♦️",
	Club:    "♣️",
}

// names is used for logs and admin replies.
var names = map[Suit]string{
	Spade:   "spade",
	Heart:   "heart",
	Diamond: "diamond",
	Club:    "club",
}

// aliases maps every accepted glyph to its canonical suit.
var aliases = map[rune]Suit{
	'♠': Spade, '♤': Spade,
	'♥': Heart, '♡': Heart, '❤': Heart,
	'♦': Diamond, '♢': Diamond,
	'♣': Club, '♧': Club,
}

// Parse maps a glyph to its suit. Outline glyphs and the heavy heart are
// accepted alongside the solid ones.
func Parse(r rune) (Suit, bool) {
	s, ok := aliases[r]
	return s, ok
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	_, ok := mirrors[s]
	return ok
}

// Mirror returns the partner suit. It panics on an invalid suit, since the
// mapping is total over the four suits and nothing else should reach it.
func (s Suit) Mirror() Suit {
	m, ok := mirrors[s]
	if !ok {
		panic(fmt.Sprintf("suit: mirror of invalid suit %U", rune(s)))
	}
	return m
}

// Label returns the emoji label used in channel posts.
func (s Suit) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(rune(s))
}

// Name returns the lowercase English name of the suit.
func (s Suit) Name() string {
	if n, ok := names[s]; ok {
		return n
	}
	return "unknown"
}

// String implements fmt.Stringer.
func (s Suit) String() string {
	return string(rune(s))
}
