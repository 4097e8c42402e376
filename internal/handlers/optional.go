package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/arman-d/TutorAppBack/internal/repository"
)

// Raw-message decoding keeps "field absent" and "field: null" distinct:
// absent leaves the Optional unset, null clears the column.

func optionalString(raw json.RawMessage) (repository.Optional[string], error) {
	if raw == nil {
		return repository.Optional[string]{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return repository.Clear[string](), nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return repository.Optional[string]{}, err
	}
	return repository.Set(value), nil
}

func optionalTime(raw json.RawMessage, layout string) (repository.Optional[time.Time], error) {
	if raw == nil {
		return repository.Optional[time.Time]{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return repository.Clear[time.Time](), nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return repository.Optional[time.Time]{}, err
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return repository.Optional[time.Time]{}, err
	}
	return repository.Set(parsed), nil
}

func optionalInt(raw json.RawMessage) (repository.Optional[int], error) {
	if raw == nil {
		return repository.Optional[int]{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return repository.Clear[int](), nil
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return repository.Optional[int]{}, err
	}
	return repository.Set(value), nil
}

func optionalFloat(raw json.RawMessage) (repository.Optional[float64], error) {
	if raw == nil {
		return repository.Optional[float64]{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return repository.Clear[float64](), nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return repository.Optional[float64]{}, err
	}
	return repository.Set(value), nil
}

func optionalBool(raw json.RawMessage) (repository.Optional[bool], error) {
	if raw == nil {
		return repository.Optional[bool]{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return repository.Clear[bool](), nil
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return repository.Optional[bool]{}, err
	}
	return repository.Set(value), nil
}
