package config

import "errors"

// ErrInvalidConfig is returned for config values that can't be used.
var ErrInvalidConfig = errors.New("config: invalid config")
