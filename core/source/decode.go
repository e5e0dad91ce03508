package source

import (
	"encoding/json"

	"github.com/FocuswithJustin/Lectern/core/errors"
)

// DecodeIndex parses and validates the lightweight content index.
func DecodeIndex(data []byte) ([]IndexEntry, error) {
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &errors.ParseError{Format: "index", Message: err.Error(), Err: err}
	}
	if err := ValidateIndex(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DecodeBook parses and validates one raw book payload.
func DecodeBook(data []byte) (*RawBook, error) {
	var book RawBook
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, &errors.ParseError{Format: "book payload", Message: err.Error(), Err: err}
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return &book, nil
}
