// Package parser turns fetched beat content into ownership records.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/starford/collabeat/internal/models"
)

// ErrInvalidUTF8 is returned by DecodeText for content that is not UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// DecodeText returns data as text, rejecting invalid UTF-8.
func DecodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// ParseOwnership parses text as a JSON array of ownership records.
// An empty array yields an empty, non-nil slice.
func ParseOwnership(text string) ([]models.OwnershipRecord, error) {
	var records []models.OwnershipRecord
	if err := json.Unmarshal([]byte(text), &records); err != nil {
		return nil, fmt.Errorf("parse ownership records: %w", err)
	}
	if records == nil {
		return nil, errors.New("parse ownership records: expected a JSON array, got null")
	}
	return records, nil
}
