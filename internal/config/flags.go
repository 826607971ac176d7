package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gurl [flags] <URL>",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request flags
	flags.StringP("request", "X", "GET", "HTTP method to use")
	flags.StringArrayP("header", "H", nil, "Request header in 'Name: Value' form (repeatable)")
	flags.StringP("data", "d", "", "Request body payload; use @filename to read from a file")
	flags.StringP("user-agent", "A", "", "Custom User-Agent string")
	flags.StringP("user", "u", "", "Basic auth credentials as user:pass")

	// Redirect flags
	flags.BoolP("location", "L", false, "Follow 3xx redirects")
	flags.Int("max-redirs", 10, "Maximum number of redirects to follow")

	// Transport flags
	flags.String("tls-version", "", "Minimum TLS version: 1.0, 1.1, 1.2 or 1.3 (default 1.2)")
	flags.Duration("connect-timeout", 10*time.Second, "Connection establishment timeout")
	flags.Duration("read-timeout", 30*time.Second, "Per-read timeout on the response")
	flags.Duration("write-timeout", 10*time.Second, "Per-write timeout on the request")
	flags.Int64("max-response-size", 10<<20, "Maximum decoded response size in bytes")
	flags.Int("max-header-bytes", 64<<10, "Maximum response header block size in bytes")

	// Output flags
	flags.StringP("output", "o", "", "Save the response body to a file")
	flags.BoolP("include", "i", false, "Include response status line and headers in output")
	flags.BoolP("head", "I", false, "Fetch headers only (HEAD request)")
	flags.BoolP("silent", "s", false, "Silent mode (no progress or diagnostics)")
	flags.BoolP("verbose", "v", false, "Verbose connection and response diagnostics")
	flags.BoolP("fail", "f", false, "Fail silently (exit 22, no output) on HTTP errors")
	flags.Bool("json-output", false, "Emit status, headers and body as a JSON document")
	flags.String("extract", "", "Extract a value from a JSON response body by gjson path")
	flags.Bool("request-id", false, "Attach a ULID X-Request-Id header")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint to export request spans to")
	flags.String("trace-protocol", "", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.String("trace-service-name", "", "Service name reported on exported spans")
	flags.Bool("trace-propagate", false, "Inject W3C trace context headers into the request")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("request") {
		val, err := fs.GetString("request")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("data") {
		val, err := fs.GetString("data")
		if err != nil {
			return err
		}
		cfg.Body = val
		cfg.BodyFile = ""
	}
	if fs.Changed("user-agent") {
		val, err := fs.GetString("user-agent")
		if err != nil {
			return err
		}
		cfg.UserAgent = val
	}
	if fs.Changed("user") {
		val, err := fs.GetString("user")
		if err != nil {
			return err
		}
		cfg.User = val
	}
	if fs.Changed("location") {
		val, err := fs.GetBool("location")
		if err != nil {
			return err
		}
		cfg.FollowRedirects = val
	}
	if fs.Changed("max-redirs") {
		val, err := fs.GetInt("max-redirs")
		if err != nil {
			return err
		}
		cfg.MaxRedirects = val
	}
	if fs.Changed("tls-version") {
		val, err := fs.GetString("tls-version")
		if err != nil {
			return err
		}
		cfg.TLSMinVersion = val
	}
	if fs.Changed("connect-timeout") {
		val, err := fs.GetDuration("connect-timeout")
		if err != nil {
			return err
		}
		cfg.ConnectTimeout = val
	}
	if fs.Changed("read-timeout") {
		val, err := fs.GetDuration("read-timeout")
		if err != nil {
			return err
		}
		cfg.ReadTimeout = val
	}
	if fs.Changed("write-timeout") {
		val, err := fs.GetDuration("write-timeout")
		if err != nil {
			return err
		}
		cfg.WriteTimeout = val
	}
	if fs.Changed("max-response-size") {
		val, err := fs.GetInt64("max-response-size")
		if err != nil {
			return err
		}
		cfg.MaxResponseSize = val
	}
	if fs.Changed("max-header-bytes") {
		val, err := fs.GetInt("max-header-bytes")
		if err != nil {
			return err
		}
		cfg.MaxHeaderBytes = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.OutputFile = val
	}
	if fs.Changed("include") {
		val, err := fs.GetBool("include")
		if err != nil {
			return err
		}
		cfg.IncludeHeaders = val
	}
	if fs.Changed("head") {
		val, err := fs.GetBool("head")
		if err != nil {
			return err
		}
		cfg.HeadOnly = val
	}
	if fs.Changed("silent") {
		val, err := fs.GetBool("silent")
		if err != nil {
			return err
		}
		cfg.Silent = val
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("fail") {
		val, err := fs.GetBool("fail")
		if err != nil {
			return err
		}
		cfg.FailFast = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("extract") {
		val, err := fs.GetString("extract")
		if err != nil {
			return err
		}
		cfg.Extract = val
	}
	if fs.Changed("request-id") {
		val, err := fs.GetBool("request-id")
		if err != nil {
			return err
		}
		cfg.RequestID = val
	}

	vals, err := fs.GetStringArray("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		cfg.Headers = append(cfg.Headers, vals...)
	}

	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = val
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = val
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}

	return nil
}
