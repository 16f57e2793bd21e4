package config

import "errors"

// Validation errors returned by Config.Validate
var (
	ErrMissingSlackToken   = errors.New("slack token is required")
	ErrMissingSlackChannel = errors.New("slack channel is required")
	ErrMissingResultsDir   = errors.New("results directory is required")
	ErrInvalidWaitTimeout  = errors.New("wait timeout must be positive")
)
