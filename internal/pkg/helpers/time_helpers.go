package helpers

import (
	"time"

	"github.com/yigit/roster/internal/pkg/logger"
)

// ParseDuration parses a positive duration such as "10m" or "24h".
// Malformed, zero and negative values yield fallback.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using fallback")
		return fallback
	case d <= 0:
		logger.Warn().Str("value", value).Dur("fallback", fallback).Msg("Non-positive duration, using fallback")
		return fallback
	}
	return d
}
