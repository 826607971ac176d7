package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tessark/gurl/internal/transport"
)

// Config holds every knob for one invocation: the request to send, the
// redirect and TLS policy, I/O limits, and output options.
type Config struct {
	TargetURL string   `mapstructure:"target"`
	Method    string   `mapstructure:"method"`
	Headers   []string `mapstructure:"headers"`
	Body      string   `mapstructure:"body"`
	BodyFile  string   `mapstructure:"body_file"`

	UserAgent string `mapstructure:"user_agent"`
	User      string `mapstructure:"user"`

	FollowRedirects bool `mapstructure:"follow_redirects"`
	MaxRedirects    int  `mapstructure:"max_redirects"`

	TLSMinVersion  string        `mapstructure:"tls_version"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`

	MaxResponseSize int64 `mapstructure:"max_response_size"`
	MaxHeaderBytes  int   `mapstructure:"max_header_bytes"`

	OutputFile     string `mapstructure:"output"`
	IncludeHeaders bool   `mapstructure:"include_headers"`
	HeadOnly       bool   `mapstructure:"head_only"`
	Silent         bool   `mapstructure:"silent"`
	Verbose        bool   `mapstructure:"verbose"`
	FailFast       bool   `mapstructure:"fail_fast"`
	JSONOutput     bool   `mapstructure:"json_output"`
	Extract        string `mapstructure:"extract"`

	RequestID bool `mapstructure:"request_id"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

// TracingConfig configures the optional OpenTelemetry exporter.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether spans should be exported.
func (c TracingConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into
// the outgoing request.
func (c TracingConfig) ShouldPropagate() bool {
	return c.Propagate
}

// ValidationError aggregates every problem found in a Config.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns a copy of the individual validation problems.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the configuration for contradictions and bad values.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target URL is required (use --help for usage information)")
	}
	if strings.TrimSpace(c.Method) == "" {
		issues = append(issues, "method cannot be empty")
	}
	if strings.TrimSpace(c.Body) != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and bodyFile are mutually exclusive")
	}
	if c.MaxRedirects < 0 {
		issues = append(issues, "max redirects must be >= 0")
	}
	if c.ConnectTimeout < 0 {
		issues = append(issues, "connect timeout must be >= 0")
	}
	if c.ReadTimeout < 0 {
		issues = append(issues, "read timeout must be >= 0")
	}
	if c.WriteTimeout < 0 {
		issues = append(issues, "write timeout must be >= 0")
	}
	if c.MaxResponseSize < 0 {
		issues = append(issues, "max response size must be >= 0")
	}
	if c.MaxHeaderBytes < 0 {
		issues = append(issues, "max header bytes must be >= 0")
	}
	if _, err := transport.TLSVersion(c.TLSMinVersion); err != nil {
		issues = append(issues, err.Error())
	}
	for _, entry := range c.Headers {
		if _, _, err := ParseHeaderField(entry); err != nil {
			issues = append(issues, err.Error())
		}
	}
	if c.JSONOutput && c.IncludeHeaders {
		issues = append(issues, "json-output already carries headers; --include is redundant")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, fmt.Sprintf("tracing sample_rate must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// ParseHeaderField splits a "Name: Value" header entry. The name must
// be non-empty and neither part may contain CR or LF.
func ParseHeaderField(entry string) (string, string, error) {
	name, value, ok := strings.Cut(entry, ":")
	if !ok {
		return "", "", fmt.Errorf("header must be in 'Name: Value' form: %q", entry)
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return "", "", fmt.Errorf("header name cannot be empty: %q", entry)
	}
	if strings.ContainsAny(name, "\r\n") || strings.ContainsAny(value, "\r\n") {
		return "", "", fmt.Errorf("header cannot contain newlines: %q", entry)
	}
	return name, value, nil
}
