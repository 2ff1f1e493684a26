package statemachine

import (
	"strings"

	"payment-tracker-api/apperr"
)

// State is the soft-delete lifecycle state of a customer, payment or user.
type State string

const (
	Active   State = "active"
	Inactive State = "inactive"
)

// StateOf maps an is_active flag to its lifecycle state.
func StateOf(isActive bool) State {
	if isActive {
		return Active
	}
	return Inactive
}

// Event names the operation that moves a record between states.
type Event string

const (
	Deactivate Event = "delete"
	Reactivate Event = "reactivate"
)

// Transition defines a valid state change and the event that causes it
type Transition struct {
	From  State
	To    State
	Event Event
}

// validTransitions is the authoritative lifecycle definition
var validTransitions = []Transition{
	// Soft delete only applies to active records
	{From: Active, To: Inactive, Event: Deactivate},
	// Reactivation only applies to soft-deleted records
	{From: Inactive, To: Active, Event: Reactivate},
}

var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidEventsFrom returns the events allowed from a given state
func ValidEventsFrom(s State) []Event {
	var events []Event
	for _, t := range validTransitions {
		if t.From == s {
			events = append(events, t.Event)
		}
	}
	return events
}

// Apply returns the state reached by ev from the current is_active flag,
// or a validation error when the record is already in the target state.
func Apply(isActive bool, ev Event) (bool, error) {
	from := StateOf(isActive)
	for _, t := range validTransitions {
		if t.Event == ev && transitionMap[Transition{From: from, To: t.To, Event: ev}] {
			return t.To == Active, nil
		}
	}
	return isActive, apperr.Validation("is_active",
		"cannot %s a record that is %s; allowed: %s", ev, from, describeValidFrom(from))
}

func describeValidFrom(s State) string {
	events := ValidEventsFrom(s)
	if len(events) == 0 {
		return "none"
	}
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = string(ev)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full lifecycle for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
