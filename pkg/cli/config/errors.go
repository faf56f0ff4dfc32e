package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrDuplicateThemeID = goerr.New("duplicate theme ID")
	ErrUnknownStatus    = goerr.New("unknown obligation status")
	ErrInvalidSLADays   = goerr.New("SLA days must be positive")
)
