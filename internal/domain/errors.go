package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid hotel record")
	ErrDuplicateID   = errors.New("duplicate hotel id")
	ErrNoCatalog     = errors.New("catalog not loaded")
)
