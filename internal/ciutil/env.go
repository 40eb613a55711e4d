package ciutil

import (
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"
)

// Environment variables consulted by this package.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// Integration test services
	EnvTestPostgresURL = "TASKFLOW_TEST_POSTGRES_URL"
	EnvTestMongoURL    = "TASKFLOW_TEST_MONGO_URL"
	EnvTestRedisAddr   = "TASKFLOW_TEST_REDIS_ADDR"
)

// IsCI returns true if the current environment is a CI environment.
// It checks for common CI environment variables across different CI providers.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("Using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", MaskSensitiveValue(val),
				)
			}
			return val
		}
	}
	return defaultValue
}

// MaskSensitiveValue hides the password of a connection URL, or the middle of
// a value that looks like a token or key, so it can be logged.
func MaskSensitiveValue(value string) string {
	if u, err := url.Parse(value); err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "****")
			// Keep the mask readable instead of percent-encoded.
			return strings.Replace(u.String(), "%2A%2A%2A%2A", "****", 1)
		}
		return value
	}

	lower := strings.ToLower(value)
	if len(value) > 8 && (strings.Contains(lower, "key") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret")) {
		return value[:4] + "****" + value[len(value)-4:]
	}
	return value
}

// RequireService returns the connection string in envVar. When it is unset the
// test is skipped, or failed when running on CI.
func RequireService(tb testing.TB, envVar string) string {
	tb.Helper()
	value := os.Getenv(envVar)
	if value != "" {
		tb.Logf("using %s=%s", envVar, MaskSensitiveValue(value))
		return value
	}
	if IsCI() {
		tb.Fatalf("%s must be set for integration tests on CI", envVar)
	}
	tb.Skipf("%s not set", envVar)
	return ""
}
