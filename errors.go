package bootmeta

import "fmt"

// MissingError is returned when a required metadata document is not present.
type MissingError struct {
	// Key is the attribute key, if the document backs an attribute
	Key string
	// Path is the metadata path that was fetched
	Path string
}

func (e *MissingError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("metadata %s not present", e.Path)
	}

	return fmt.Sprintf("required metadata %s not present (%s)", e.Key, e.Path)
}

// ParseError is returned when a metadata document was fetched, but could not
// be parsed or was missing an expected field.
type ParseError struct {
	Err  error
	Key  string
	Path string
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("parse %s from %s: %v", e.Key, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
