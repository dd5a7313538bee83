package config

import (
	"os"
	"strings"
	"sync"

	"github.com/httprunner/WorksheetAgent/internal/env"
)

// Environment variables understood by the CLI. The record operation itself
// only takes explicit parameters; these are fallbacks for unset flags.
const (
	EnvAppKey        = "HAP_APP_KEY"
	EnvSign          = "HAP_SIGN"
	EnvHost          = "HAP_HOST"
	EnvVerboseErrors = "HAP_VERBOSE_ERRORS"
	EnvLogLevel      = "LOG_LEVEL"

	// Names used by HAP MCP server deployments, checked in this order after
	// the HAP_* names. Plain HOST is not read: shells commonly export it as
	// the machine hostname.
	EnvAppKeyMingdao = "MINGDAO_APP_KEY"
	EnvSignMingdao   = "MINGDAO_SIGN"
	EnvHostMingdao   = "MINGDAO_HOST"
	EnvAppKeyAlias   = "APPKEY"
	EnvSignAlias     = "SIGN"
)

// Lookup orders for CLI credential fallbacks.
var (
	AppKeyVars = []string{EnvAppKey, EnvAppKeyMingdao, EnvAppKeyAlias}
	SignVars   = []string{EnvSign, EnvSignMingdao, EnvSignAlias}
	HostVars   = []string{EnvHost, EnvHostMingdao}
)

var ensureOnce sync.Once

func ensureEnvLoaded() {
	ensureOnce.Do(func() {
		_, _ = env.Ensure()
	})
}

// String returns the trimmed environment variable or fallback when unset.
func String(key, fallback string) string {
	ensureEnvLoaded()
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// FirstString returns the first non-empty variable among keys, or "".
func FirstString(keys ...string) string {
	for _, key := range keys {
		if val := String(key, ""); val != "" {
			return val
		}
	}
	return ""
}

// Bool parses a boolean environment variable.
func Bool(key string, fallback bool) bool {
	ensureEnvLoaded()
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		lower := strings.ToLower(val)
		if lower == "1" || lower == "true" || lower == "yes" {
			return true
		}
		if lower == "0" || lower == "false" || lower == "no" {
			return false
		}
	}
	return fallback
}
