package config

import "errors"

var (
	// ErrInvalidConfig reports a setting the service cannot run with.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading the .env file, the YAML file or the environment.
	ErrLoadConfig = errors.New("load config failed")
)
