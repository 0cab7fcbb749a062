/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"fmt"
	"sync"
)

// State is a node in a call or media state machine
type State string

// MachineEvent is an input to a state machine
type MachineEvent string

type transitionKey struct {
	state State
	event MachineEvent
}

// transitionTable maps (state, event) pairs to the next state. Inputs with
// no entry for the current state are rejected.
type transitionTable map[transitionKey]State

// stateMachine is a table-driven state machine. Transitions are serialized
// under an internal mutex; the optional onTransition hook runs outside the
// lock so it can fire further events.
type stateMachine struct {
	mu           sync.Mutex
	name         string
	current      State
	table        transitionTable
	onTransition func(from State, event MachineEvent, to State)
}

func newStateMachine(name string, initial State, table transitionTable) *stateMachine {
	return &stateMachine{
		name:    name,
		current: initial,
		table:   table,
	}
}

// Current returns the machine's current state.
func (m *stateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Fire applies an event. It returns an error when the table has no
// transition for the current (state, event) pair, leaving the state
// unchanged.
func (m *stateMachine) Fire(event MachineEvent) error {
	m.mu.Lock()
	from := m.current
	next, ok := m.table[transitionKey{state: from, event: event}]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s: no transition from %s on %s", m.name, from, event)
	}
	m.current = next
	hook := m.onTransition
	m.mu.Unlock()

	if hook != nil {
		hook(from, event, next)
	}
	return nil
}

// CanFire reports whether the table accepts event in the current state.
func (m *stateMachine) CanFire(event MachineEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.table[transitionKey{state: m.current, event: event}]
	return ok
}
