package provider

import "errors"

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrUnknownFormat   = errors.New("unknown candidate file format")
	ErrEmptyName       = errors.New("candidate has no name")
)
