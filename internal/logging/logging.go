// Package logging builds the zap loggers used by the CLI and server.
package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RedactedText replaces secrets in logs and printed config.
const RedactedText = "[REDACTED]"

var (
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9._\-]+`)
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|x-api-key|key)=[A-Za-z0-9._\-]{16,}`)
	skKeyPattern  = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{16,}`)
)

// New returns a JSON production logger, or a colored console logger at debug
// level when debug is set.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// NewServer returns the logger for the long-running HTTP server, which logs
// at info level in production.
func NewServer(debug bool) (*zap.Logger, error) {
	if debug {
		return New(true)
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// MaskSecret shows the first and last four characters of a secret.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case len(s) <= 12:
		return RedactedText
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// SanitizeError removes bearer tokens and API keys from an error message.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := bearerPattern.ReplaceAllString(err.Error(), "Bearer "+RedactedText)
	msg = apiKeyPattern.ReplaceAllString(msg, "${1}="+RedactedText)
	return skKeyPattern.ReplaceAllString(msg, RedactedText)
}
