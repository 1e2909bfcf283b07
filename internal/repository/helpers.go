package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// encodeStrings stores a string slice as a JSON array. nil becomes "[]".
func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding string list: %w", err)
	}
	return string(b), nil
}

// decodeStrings reverses encodeStrings. An empty list decodes to nil.
func decodeStrings(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decoding string list: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func encodeResult(r domain.SimulationResult) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(b), nil
}

func decodeResult(s string) (domain.SimulationResult, error) {
	var r domain.SimulationResult
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return domain.SimulationResult{}, fmt.Errorf("decoding result: %w", err)
	}
	return r, nil
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
