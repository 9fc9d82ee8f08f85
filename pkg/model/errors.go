package model

import "errors"

var (
	// ErrNotFound is returned when a document is not found
	ErrNotFound = errors.New("document not found")
	// ErrEmptyStore is returned when the latest document is requested from an empty store
	ErrEmptyStore = errors.New("store is empty")
	// ErrMalformedChange is returned when a change row is missing a usable document id
	ErrMalformedChange = errors.New("malformed change row")
)
