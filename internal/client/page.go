package client

import (
	"bytes"
	"encoding/json"
)

// Page is a list payload. The backend answers either with a bare JSON array or
// with a paginated envelope; both decode into a Page.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
	Results  []T     `json:"results"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = Page[T]{}
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	var envelope struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}

	*p = Page[T]{
		Count:    envelope.Count,
		Next:     envelope.Next,
		Previous: envelope.Previous,
		Results:  envelope.Results,
	}
	return nil
}
