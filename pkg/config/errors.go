package config

import "errors"

// ErrInvalidValue marks a config value that names no known option.
var ErrInvalidValue = errors.New("invalid config value")
