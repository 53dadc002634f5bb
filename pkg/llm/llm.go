// Package llm wraps the language model used to write the prose parts of the generated documents.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by Provider.Client when no API key was configured.
	ErrNotConfigured = errors.New("language model not configured")
	// ErrInvalidJSON is returned when the model answer is not the JSON document asked for.
	ErrInvalidJSON = errors.New("invalid json from LLM")
)

// Client asks a model for a JSON document.
type Client interface {
	Name() string
	// GenerateJSON sends prompt followed by input rendered as JSON and returns the model's JSON answer.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}

// Decode unmarshals a model answer into T. Markdown code fences around the JSON are tolerated.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T

	data := bytes.TrimSpace(raw)
	if bytes.HasPrefix(data, []byte("```")) {
		data = bytes.TrimPrefix(data, []byte("```"))
		if nl := bytes.IndexByte(data, '\n'); nl >= 0 {
			data = data[nl+1:] // language tag, e.g. ```json
		}
		data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("```"))
		data = bytes.TrimSpace(data)
	}
	if len(data) == 0 {
		return v, fmt.Errorf("%w: empty answer", ErrInvalidJSON)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return v, nil
}

func buildPrompt(prompt string, input any) (string, error) {
	if input == nil {
		return prompt, nil
	}
	in, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal prompt input: %w", err)
	}
	return prompt + "\n\n[INPUT JSON]\n" + string(in), nil
}
