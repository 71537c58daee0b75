package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrGameNotFound is returned when a game id is unknown.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameFinished is returned when an action arrives after the game ended.
	ErrGameFinished = errors.New("game has ended")
	// ErrGameHalted is returned when a game stopped after an invariant failure.
	ErrGameHalted = errors.New("game halted after internal error")
)

// ActionError reports a rule violation to the offending player. The game
// state is unchanged when one is returned.
type ActionError struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

func (e *ActionError) Error() string {
	return e.Message
}

func newActionError(format string, args ...any) error {
	return &ActionError{Message: fmt.Sprintf(format, args...), Time: time.Now()}
}

// InvariantError is raised (as a panic) when the engine finds its own state
// inconsistent. Processing of that game must stop.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Message
}
