// Package engine implements the Love Letter card game rules.
//
// The package is deliberately dependency-free: every transition is a pure
// function of the current state, randomness comes from a seed carried inside
// the state itself, and the whole GameState is a plain serializable value.
// Transport, persistence, and auth live in the service layer.
package engine

import (
	"encoding/json"
	"fmt"
)

// Card identifies one of the eight card kinds. The numeric value of a Card
// is its rank, used for Baron comparisons and round-end scoring.
type Card uint8

const (
	// CardNone represents the absence of a card.
	CardNone Card = iota
	Guard         // rank 1
	Priest        // rank 2
	Baron         // rank 3
	Handmaid      // rank 4
	Prince        // rank 5
	King          // rank 6
	Countess      // rank 7
	Princess      // rank 8
)

// DeckSize is the number of cards in a full deck.
const DeckSize = 16

// Rank returns the card's rank (1-8), or 0 for CardNone.
func (c Card) Rank() int { return int(c) }

// Count returns how many copies of the card a full deck contains.
func (c Card) Count() int {
	switch c {
	case Guard:
		return 5
	case Priest, Baron, Handmaid, Prince:
		return 2
	case King, Countess, Princess:
		return 1
	}
	return 0
}

func (c Card) String() string {
	switch c {
	case Guard:
		return "guard"
	case Priest:
		return "priest"
	case Baron:
		return "baron"
	case Handmaid:
		return "handmaid"
	case Prince:
		return "prince"
	case King:
		return "king"
	case Countess:
		return "countess"
	case Princess:
		return "princess"
	}
	return "none"
}

// ParseCard maps a card name back to its Card value.
// Unknown names return CardNone.
func ParseCard(name string) Card {
	for c := Guard; c <= Princess; c++ {
		if c.String() == name {
			return c
		}
	}
	return CardNone
}

// MarshalJSON encodes the card as its lowercase name.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a card from its lowercase name.
func (c *Card) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == "none" || name == "" {
		*c = CardNone
		return nil
	}
	parsed := ParseCard(name)
	if parsed == CardNone {
		return fmt.Errorf("unknown card %q", name)
	}
	*c = parsed
	return nil
}

// NewDeck returns the full 16-card composition in catalog order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for c := Guard; c <= Princess; c++ {
		for i := 0; i < c.Count(); i++ {
			deck = append(deck, c)
		}
	}
	return deck
}
