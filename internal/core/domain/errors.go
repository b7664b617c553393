package domain

import "errors"

// Storage-agnostic uniqueness sentinels. Repositories translate their
// backend's duplicate-key failures into these so services can map them to
// caller-facing errors without knowing the storage engine.
var (
	ErrDuplicateIdentity = errors.New("identity already exists")
	ErrDuplicateEmail    = errors.New("email already bound")
	ErrDuplicateUsername = errors.New("username already exists")
)
