package config

import "errors"

var (
	ErrNoConfig = errors.New("no config selected")

	ErrEmptyLabel     = errors.New("label cannot be empty")
	ErrConfigExists   = errors.New("config already exists")
	ErrConfigNotFound = errors.New("config does not exist")

	ErrInvalidWorkers   = errors.New("invalid workers: must be at least 1")
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")
	ErrInvalidTimeout   = errors.New("invalid timeout: must be non-negative")
	ErrInvalidFormat    = errors.New("invalid format: want json, markdown or text")
	ErrInvalidBackend   = errors.New("invalid settings backend: want file, sqlite, redis or memory")
	ErrMissingRedisAddr = errors.New("settings backend redis needs redis_addr")
)
