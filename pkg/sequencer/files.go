package sequencer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type status struct {
	Type   string `json:"type"`
	Status bool   `json:"status"`
}

// WriteStatus replaces the status file with {"type":"status","status":running}.
// An empty path disables it.
func WriteStatus(path string, running bool) error {
	if path == "" {
		return nil
	}
	data, err := json.Marshal(status{Type: "status", Status: running})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	return nil
}

// ResetFile truncates a side file at the start of a macro
func ResetFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("failed to reset %s: %w", path, err)
	}
	return nil
}

// AppendResponse appends to the response file: booleans as true/false,
// strings verbatim, anything else as a JSON document.
func AppendResponse(path string, v any) error {
	if path == "" {
		return nil
	}

	var data []byte
	switch r := v.(type) {
	case bool:
		data = []byte(strconv.FormatBool(r))
	case string:
		data = []byte(r)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open response file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write response file: %w", err)
	}
	return f.Close()
}
