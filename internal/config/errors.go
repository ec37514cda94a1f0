package config

import "errors"

// Error kinds surfaced by configuration loading; callers branch with
// errors.Is to tell bad values from unreadable sources.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
