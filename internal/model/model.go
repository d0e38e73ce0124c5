// Package model contains the demonstration model: an ordered collection of
// texts fitted from a dataset, queried by index.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFitted is returned when the model is queried before any fit.
var ErrNotFitted = errors.New("model is not fitted")

// ErrNoSuchIndex is returned when a requested index is outside the fitted
// dataset.
var ErrNoSuchIndex = errors.New("no such index in the fitted dataset")

// State is the persisted model state produced by a fit.
type State struct {
	ID       string    `json:"id"`
	Texts    []string  `json:"texts"`
	FittedAt time.Time `json:"fitted_at"`
}

// Encode serializes the state for persistence.
func (s State) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeState deserializes a previously persisted state.
func DecodeState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode model state: %w", err)
	}
	return s, nil
}

// Model holds the fitted texts. A fit replaces the previous state wholesale.
type Model struct {
	state  State
	fitted bool
}

// New creates an unfitted Model.
func New() *Model {
	return &Model{}
}

// Fit replaces the model state with the given texts and returns the new
// state. The slice is copied so later mutation by the caller cannot change
// the fitted dataset.
func (m *Model) Fit(texts []string) State {
	stored := make([]string, len(texts))
	copy(stored, texts)

	m.state = State{
		ID:       uuid.New().String(),
		Texts:    stored,
		FittedAt: time.Now().UTC(),
	}
	m.fitted = true
	return m.state
}

// Lookup returns the text stored at the given index.
func (m *Model) Lookup(index int) (string, error) {
	if !m.fitted {
		return "", ErrNotFitted
	}
	if index < 0 || index >= len(m.state.Texts) {
		return "", fmt.Errorf("index %d: %w", index, ErrNoSuchIndex)
	}
	return m.state.Texts[index], nil
}

// LookupAll returns the texts stored at the given indices, in request order.
func (m *Model) LookupAll(indices []int) ([]string, error) {
	results := make([]string, 0, len(indices))
	for _, idx := range indices {
		text, err := m.Lookup(idx)
		if err != nil {
			return nil, err
		}
		results = append(results, text)
	}
	return results, nil
}

// IsFitted reports whether the model has state to predict from.
func (m *Model) IsFitted() bool {
	return m.fitted
}

// Size returns the number of fitted texts.
func (m *Model) Size() int {
	return len(m.state.Texts)
}

// State returns the current model state.
func (m *Model) State() State {
	return m.state
}

// Restore installs previously persisted state and marks the model fitted.
func (m *Model) Restore(s State) {
	m.state = s
	m.fitted = true
}

// Reset discards all state, returning the model to unfitted.
func (m *Model) Reset() {
	m.state = State{}
	m.fitted = false
}
