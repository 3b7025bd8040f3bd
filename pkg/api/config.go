/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

var (
	// ErrInvalidConfig is returned when the configuration cannot drive a run.
	ErrInvalidConfig = errors.New("invalid configuration")
)

const (
	// DefaultBaseURL is the issue tracker the runner targets when none is configured.
	DefaultBaseURL = "https://issue-handler-1.preview.emergentagent.com/api"

	// DefaultPassThreshold is the success rate, in percent, a run must reach.
	DefaultPassThreshold = 80.0

	defaultDemoEmail        = "demo@test.com"
	defaultDemoPassword     = "demo123"
	defaultRegisterPassword = "TestPass123!"
	defaultRegisterName     = "Test User"
	defaultMetricsJob       = "issuetracker-apitest"
)

type TestConfig struct {
	BaseURL          string
	RequestTimeout   time.Duration
	DemoEmail        string
	DemoPassword     string
	RegisterPassword string
	RegisterName     string
	PassThreshold    float64
	DebugLogging     bool
	LogRequests      bool
	LogResponses     bool
	MetricsPushURL   string
	MetricsJob       string
	ReportFile       string
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Variables already present in the environment win over those in the files.
// A request timeout of zero leaves the transport default in place.
func LoadTestConfig(envFiles ...string) *TestConfig {
	loadEnvFile(envFiles...)

	return &TestConfig{
		BaseURL:          getWithDefault("API_BASE_URL", DefaultBaseURL),
		RequestTimeout:   getDurationWithDefault("REQUEST_TIMEOUT", 0),
		DemoEmail:        getWithDefault("DEMO_EMAIL", defaultDemoEmail),
		DemoPassword:     getWithDefault("DEMO_PASSWORD", defaultDemoPassword),
		RegisterPassword: getWithDefault("REGISTER_PASSWORD", defaultRegisterPassword),
		RegisterName:     getWithDefault("REGISTER_NAME", defaultRegisterName),
		PassThreshold:    getFloatWithDefault("PASS_THRESHOLD", DefaultPassThreshold),
		DebugLogging:     getBoolWithDefault("DEBUG_LOGGING", false),
		LogRequests:      getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:     getBoolWithDefault("LOG_RESPONSES", false),
		MetricsPushURL:   os.Getenv("METRICS_PUSH_URL"),
		MetricsJob:       getWithDefault("METRICS_JOB", defaultMetricsJob),
		ReportFile:       os.Getenv("REPORT_FILE"),
	}
}

// AddFlags registers command line overrides, the current values act as defaults.
func (c *TestConfig) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&c.BaseURL, "base-url", c.BaseURL, "Issue tracker API base URL, including the /api prefix.")
	f.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "Per request timeout, 0 uses the transport default.")
	f.StringVar(&c.DemoEmail, "demo-email", c.DemoEmail, "Email of the demo account used to log in.")
	f.StringVar(&c.DemoPassword, "demo-password", c.DemoPassword, "Password of the demo account used to log in.")
	f.StringVar(&c.RegisterPassword, "register-password", c.RegisterPassword, "Password used when registering a fallback user.")
	f.StringVar(&c.RegisterName, "register-name", c.RegisterName, "Display name used when registering a fallback user.")
	f.Float64Var(&c.PassThreshold, "pass-threshold", c.PassThreshold, "Success rate in percent required for a zero exit code.")
	f.BoolVar(&c.DebugLogging, "debug", c.DebugLogging, "Enable debug logging.")
	f.BoolVar(&c.LogRequests, "log-requests", c.LogRequests, "Log every request with its status, duration and trace ID.")
	f.BoolVar(&c.LogResponses, "log-responses", c.LogResponses, "Log every response body.")
	f.StringVar(&c.MetricsPushURL, "metrics-push-url", c.MetricsPushURL, "Prometheus Pushgateway URL, metrics are not pushed when empty.")
	f.StringVar(&c.MetricsJob, "metrics-job", c.MetricsJob, "Job name used when pushing metrics.")
	f.StringVar(&c.ReportFile, "report-file", c.ReportFile, "Write a YAML report of the run to this file.")
}

// Validate checks the configuration can drive a run.
func (c *TestConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base URL %q: %w", ErrInvalidConfig, c.BaseURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base URL %q must be an absolute http(s) URL", ErrInvalidConfig, c.BaseURL)
	}

	if c.PassThreshold < 0 || c.PassThreshold > 100 {
		return fmt.Errorf("%w: pass threshold %v must be between 0 and 100", ErrInvalidConfig, c.PassThreshold)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request timeout %s must not be negative", ErrInvalidConfig, c.RequestTimeout)
	}

	return nil
}

func getWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

func loadEnvFile(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var found []string

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			found = append(found, path)
		}
	}

	if len(found) == 0 {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	if err := godotenv.Load(found...); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env files %v: %v\n", found, err)
	}
}
