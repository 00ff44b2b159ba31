// Package store reads seed sessions from JSON documents.
// Sessions are never written back; everything lives in memory once loaded.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"taskforge/app"
	"taskforge/model"
)

// ErrDuplicateID reports a seed that lists the same task id more than once.
var ErrDuplicateID = errors.New("duplicate task id")

// Load reads a seed state from a JSON file.
// Unlike a state file, a seed is requested explicitly, so a missing file is an error.
func Load(path string) (model.AppState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.AppState{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	state, err := Decode(bytes.NewReader(data))
	if err != nil {
		return model.AppState{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return state, nil
}

// Decode parses a seed document. Omitted collections become empty and a
// missing nextId is left at zero for the service to derive.
func Decode(r io.Reader) (model.AppState, error) {
	var state model.AppState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return model.AppState{}, err
	}

	if state.Active == nil {
		state.Active = []model.Task{}
	}
	if state.Completed == nil {
		state.Completed = []model.Task{}
	}
	if state.Deleted == nil {
		state.Deleted = []model.Task{}
	}
	if state.NextID < 0 {
		state.NextID = 0
	}
	if err := validate(state); err != nil {
		return model.AppState{}, err
	}
	return state, nil
}

// validate holds seeded tasks to the rules Add enforces and requires every id
// to be positive and to appear in at most one collection.
func validate(state model.AppState) error {
	seen := make(map[int]string)
	for _, c := range []struct {
		name  string
		tasks []model.Task
	}{
		{"active", state.Active},
		{"completed", state.Completed},
		{"deleted", state.Deleted},
	} {
		for _, t := range c.tasks {
			if t.ID <= 0 {
				return fmt.Errorf("%s task %q: %w: id must be positive (got %d)", c.name, t.Name, app.ErrInvalidTask, t.ID)
			}
			if where, ok := seen[t.ID]; ok {
				return fmt.Errorf("%w: %d in %s and %s", ErrDuplicateID, t.ID, where, c.name)
			}
			seen[t.ID] = c.name
			if err := app.ValidateTask(t); err != nil {
				return fmt.Errorf("%s task %d: %w", c.name, t.ID, err)
			}
		}
	}
	return nil
}

// IsCorrupt reports whether err came from malformed or invalid seed content rather than I/O.
func IsCorrupt(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, model.ErrInvalidDate) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, app.ErrInvalidTask)
}
