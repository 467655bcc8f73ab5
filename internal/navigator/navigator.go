// Package navigator holds per-session navigation state over a shared Deck.
//
// A Navigator is a small state machine: states are slide indices 0..N-1,
// transitions are first/prev/next/last plus direct jumps. Movement saturates
// at the deck boundaries instead of failing. Navigators are not safe for
// concurrent use; each viewing session owns its own.
package navigator

import (
	"errors"
	"fmt"
	"strconv"

	"slidedeck/internal/deck"
)

// ErrIndexOutOfRange is returned by Goto for an index outside the deck.
var ErrIndexOutOfRange = errors.New("slide index out of range")

// Navigator tracks the current slide for one session.
type Navigator struct {
	deck    *deck.Deck
	current int
}

// New returns a navigator positioned on the first slide.
func New(d *deck.Deck) *Navigator {
	return &Navigator{deck: d}
}

// Deck returns the shared deck.
func (n *Navigator) Deck() *deck.Deck { return n.deck }

// Index returns the current 0-based position.
func (n *Navigator) Index() int { return n.current }

// Current returns the slide being shown.
func (n *Navigator) Current() deck.Slide { return n.deck.At(n.current) }

// AtFirst reports whether prev/first would be no-ops.
func (n *Navigator) AtFirst() bool { return n.current == 0 }

// AtLast reports whether next/last would be no-ops.
func (n *Navigator) AtLast() bool { return n.current == n.deck.Len()-1 }

// First moves to the first slide.
func (n *Navigator) First() { n.current = 0 }

// Last moves to the last slide.
func (n *Navigator) Last() { n.current = n.deck.Len() - 1 }

// Prev moves back one slide, staying on the first slide.
func (n *Navigator) Prev() {
	if n.current > 0 {
		n.current--
	}
}

// Next moves forward one slide, staying on the last slide.
func (n *Navigator) Next() {
	if n.current < n.deck.Len()-1 {
		n.current++
	}
}

// JumpTo moves to the slide with the given id. On an unknown id the position
// is unchanged and a *deck.SlideNotFoundError is returned.
func (n *Navigator) JumpTo(id string) error {
	i, ok := n.deck.IndexOf(id)
	if !ok {
		return &deck.SlideNotFoundError{ID: id}
	}
	n.current = i
	return nil
}

// Goto moves to position i. Out-of-range positions leave the state alone.
func (n *Navigator) Goto(i int) error {
	if i < 0 || i >= n.deck.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, n.deck.Len())
	}
	n.current = i
	return nil
}

// State is a serializable snapshot of a navigator.
type State struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Section string `json:"section"`
	Href    string `json:"href"`
	AtFirst bool   `json:"atFirst"`
	AtLast  bool   `json:"atLast"`
}

// State returns the current snapshot.
func (n *Navigator) State() State {
	s := n.Current()
	return State{
		Index:   n.current,
		Total:   n.deck.Len(),
		ID:      s.ID,
		Title:   s.Title,
		Section: s.Section.Label(),
		Href:    s.Href(),
		AtFirst: n.AtFirst(),
		AtLast:  n.AtLast(),
	}
}

// Action names a navigation transition.
type Action string

const (
	ActionFirst Action = "first"
	ActionPrev  Action = "prev"
	ActionNext  Action = "next"
	ActionLast  Action = "last"
	ActionJump  Action = "jump" // arg: slide id
	ActionGoto  Action = "goto" // arg: 0-based index
)

// ErrUnknownAction is returned by Apply for an unrecognized action.
var ErrUnknownAction = errors.New("unknown navigation action")

// Apply performs action and returns the resulting state. Errors never move
// the navigator; the returned state is always the current one.
func (n *Navigator) Apply(action Action, arg string) (State, error) {
	var err error
	switch action {
	case ActionFirst:
		n.First()
	case ActionPrev:
		n.Prev()
	case ActionNext:
		n.Next()
	case ActionLast:
		n.Last()
	case ActionJump:
		err = n.JumpTo(arg)
	case ActionGoto:
		i, convErr := strconv.Atoi(arg)
		if convErr != nil {
			err = fmt.Errorf("%w: %q", ErrIndexOutOfRange, arg)
			break
		}
		err = n.Goto(i)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return n.State(), err
}

// keyActions maps key names (as reported by bubbletea's KeyMsg.String and
// by browsers' KeyboardEvent.key) to actions.
var keyActions = map[string]Action{
	"left":       ActionPrev,
	"h":          ActionPrev,
	"pgup":       ActionPrev,
	"ArrowLeft":  ActionPrev,
	"PageUp":     ActionPrev,
	"right":      ActionNext,
	"l":          ActionNext,
	"pgdown":     ActionNext,
	" ":          ActionNext,
	"ArrowRight": ActionNext,
	"PageDown":   ActionNext,
	"home":       ActionFirst,
	"g":          ActionFirst,
	"Home":       ActionFirst,
	"end":        ActionLast,
	"G":          ActionLast,
	"End":        ActionLast,
}

// ActionForKey returns the action bound to a key, if any.
func ActionForKey(key string) (Action, bool) {
	a, ok := keyActions[key]
	return a, ok
}
