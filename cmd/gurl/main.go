package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tessark/gurl/internal/auth"
	"github.com/tessark/gurl/internal/client"
	"github.com/tessark/gurl/internal/config"
	"github.com/tessark/gurl/internal/httpwire"
	"github.com/tessark/gurl/internal/output"
	"github.com/tessark/gurl/internal/tracing"
	"github.com/tessark/gurl/internal/transport"
)

// exitCodeHTTPError matches curl's --fail exit code for HTTP errors.
const exitCodeHTTPError = 22

// exitError carries a specific process exit code out of run.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := 1
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		os.Exit(code)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer tracer.Shutdown(context.Background())

	body, err := httpwire.NewBodySource(cfg.Body, cfg.BodyFile)
	if err != nil {
		return err
	}

	fields := make([]httpwire.Field, 0, len(cfg.Headers))
	for _, entry := range cfg.Headers {
		name, value, err := config.ParseHeaderField(entry)
		if err != nil {
			return err
		}
		fields = append(fields, httpwire.Field{Name: name, Value: value})
	}

	tlsMin, err := transport.TLSVersion(cfg.TLSMinVersion)
	if err != nil {
		return err
	}

	var provider auth.Provider
	if cfg.User != "" {
		basic := auth.NewBasicProvider(cfg.User)
		defer basic.Close()
		provider = basic
	}

	var verbose io.Writer
	if cfg.Verbose {
		verbose = stderr
	}

	c := client.New(client.Options{
		Method:          cfg.Method,
		Headers:         fields,
		Body:            body,
		UserAgent:       cfg.UserAgent,
		Auth:            provider,
		FollowRedirects: cfg.FollowRedirects,
		MaxRedirects:    cfg.MaxRedirects,
		ConnectTimeout:  cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		MinTLSVersion:   tlsMin,
		MaxResponseSize: cfg.MaxResponseSize,
		MaxHeaderBytes:  cfg.MaxHeaderBytes,
		RequestID:       cfg.RequestID,
		Tracing:         tracer,
		Verbose:         verbose,
	})

	res, err := c.Do(ctx, cfg.TargetURL)
	if err != nil {
		return err
	}

	// --fail mirrors curl: no body output, exit 22.
	if cfg.FailFast && res.Status.Code >= 400 {
		return &exitError{
			code: exitCodeHTTPError,
			msg:  fmt.Sprintf("the requested URL returned error: %d %s", res.Status.Code, res.Status.Reason),
		}
	}

	sink := output.NewSink(output.Options{
		File:           cfg.OutputFile,
		IncludeHeaders: cfg.IncludeHeaders,
		HeadOnly:       cfg.HeadOnly,
		Silent:         cfg.Silent,
		JSON:           cfg.JSONOutput,
		Extract:        cfg.Extract,
	}, stdout, stderr)
	return sink.Write(res)
}
