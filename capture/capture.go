// Package capture builds deferred print actions inside a loop and runs them
// after the loop, showing which value each closure observes.
//
// In the default [Shared] mode every action closes over one variable that the
// loop overwrites with [Sentinel] right after the action is built, so every
// action prints [Sentinel] regardless of the input it was created for.
package capture

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Sentinel is assigned to the loop variable after each action is created.
const Sentinel = "something"

// Printer is the element type of the input sequence. A nil Printer is the
// absence marker and is skipped.
type Printer interface{}

// Action prints whatever its captured variable holds when it is called.
type Action func()

// Mode selects how an action binds the loop variable.
type Mode int

const (
	// Shared: one variable, declared before the loop, for all actions.
	Shared Mode = iota
	// PerIteration: Go's per-iteration range variable, still overwritten
	// after the action captures it.
	PerIteration
	// Snapshot: the value is copied when the action is built.
	Snapshot
)

var modeNames = map[Mode]string{
	Shared:       "shared",
	PerIteration: "per-iteration",
	Snapshot:     "snapshot",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

var ErrUnknownMode = errors.New("unknown capture mode")

// ParseMode is the inverse of Mode.String. The empty string means Shared.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return Shared, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return Shared, errors.Wrapf(ErrUnknownMode, "%q", s)
}

// Count returns the number of actions Build creates for printers.
func Count(printers []Printer) int {
	n := 0
	for _, p := range printers {
		if p != nil {
			n++
		}
	}
	return n
}

// Build creates one action per non-nil printer, printing Sentinel to w as each
// one is created. Nothing in the returned actions runs until Invoke.
//
// Only a nil interface is skipped; a typed nil pointer is an input like any
// other. Build panics on a Mode other than Shared, PerIteration or Snapshot.
func Build(w io.Writer, printers []Printer, mode Mode) []Action {
	switch mode {
	case Shared:
		return buildShared(w, printers)
	case PerIteration:
		return buildPerIteration(w, printers)
	case Snapshot:
		return buildSnapshot(w, printers)
	}
	panic(fmt.Sprintf("capture: invalid %v", mode))
}

func buildShared(w io.Writer, printers []Printer) []Action {
	var actions []Action
	var p Printer
	for i := range printers {
		// a nil element must not touch p
		if printers[i] == nil {
			continue
		}
		p = printers[i]
		action := func() {
			fmt.Fprintln(w, p)
		}
		actions = append(actions, action)
		p = Sentinel
		fmt.Fprintln(w, p)
	}
	return actions
}

func buildPerIteration(w io.Writer, printers []Printer) []Action {
	var actions []Action
	for _, p := range printers {
		if p == nil {
			continue
		}
		action := func() {
			fmt.Fprintln(w, p)
		}
		actions = append(actions, action)
		p = Sentinel
		fmt.Fprintln(w, p)
	}
	return actions
}

func buildSnapshot(w io.Writer, printers []Printer) []Action {
	var actions []Action
	for _, p := range printers {
		if p == nil {
			continue
		}
		v := p
		action := func() {
			fmt.Fprintln(w, v)
		}
		actions = append(actions, action)
		p = Sentinel
		fmt.Fprintln(w, p)
	}
	return actions
}

// Invoke calls each action in order.
func Invoke(actions []Action) {
	for _, action := range actions {
		action()
	}
}

// ActionatePrinters builds an action for every non-nil printer and then runs
// them all, in the Shared mode.
func ActionatePrinters(w io.Writer, printers []Printer) {
	Invoke(Build(w, printers, Shared))
}
