package core

import "errors"

// Common errors.
var (
	ErrNotFound         = errors.New("note not found")
	ErrInvalidID        = errors.New("note ID cannot be empty")
	ErrBusy             = errors.New("another backup or restore is in progress")
	ErrInvalidArchive   = errors.New("invalid backup archive")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrClosed           = errors.New("store is closed")
)
