package main

import (
	"errors"

	"slidedeck/internal/deck"
	"slidedeck/internal/export"
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1
	exitEmptyDeck = 2
	exitDuplicate = 3
	exitRender    = 4
)

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, deck.ErrEmptyDeck):
		return exitEmptyDeck
	case errors.Is(err, deck.ErrDuplicateID):
		return exitDuplicate
	case errors.Is(err, export.ErrRender):
		return exitRender
	default:
		return exitFailure
	}
}
