// Package validator is the entry point of the validation engine. It
// normalizes a caller's virtual files, materializes them into a private
// scratch workspace, runs the compilation driver against a deadline, maps
// the diagnostics back into caller terms and removes the workspace on every
// exit path.
//
// Only structurally invalid input is returned as an error. Workspace I/O
// failures, timeouts and compiler faults are folded into a failed
// ValidationResult carrying a single set-wide diagnostic.
//
// A Validator holds no per-call state and is safe for concurrent use.
package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/conneroisu/tsvalidate/internal/compiler"
	"github.com/conneroisu/tsvalidate/internal/config"
	"github.com/conneroisu/tsvalidate/internal/diagnostics"
	"github.com/conneroisu/tsvalidate/internal/errors"
	"github.com/conneroisu/tsvalidate/internal/fileset"
	"github.com/conneroisu/tsvalidate/internal/logging"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/workspace"
)

// Options adjust a single ValidateFiles call.
type Options struct {
	// TimeoutMs overrides the configured deadline when positive
	TimeoutMs int `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// Validator validates virtual TypeScript file sets.
type Validator struct {
	cfg      *config.Config
	checker  compiler.TypeChecker
	driver   *compiler.Driver
	logger   logging.Logger
	tracer   trace.Tracer
	compiler workspace.CompilerOptions
}

// Option configures a Validator.
type Option func(*Validator)

// WithChecker replaces the TypeScript compiler process with another
// semantic checker.
func WithChecker(checker compiler.TypeChecker) Option {
	return func(v *Validator) {
		v.checker = checker
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithTracer sets the tracer used for validation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(v *Validator) {
		v.tracer = tracer
	}
}

// New creates a Validator. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) *Validator {
	if cfg == nil {
		cfg = config.Default()
	}

	v := &Validator{
		cfg:    cfg,
		logger: logging.Nop(),
		tracer: otel.Tracer("tsvalidate/validator"),
		compiler: workspace.CompilerOptions{
			Target:           cfg.Compiler.Target,
			Module:           cfg.Compiler.Module,
			ModuleResolution: cfg.Compiler.ModuleResolution,
			JSX:              cfg.Compiler.JSX,
			Strict:           cfg.Compiler.Strict,
			Lib:              cfg.Compiler.Lib,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("validator")

	if v.checker == nil {
		v.checker = compiler.NewTSC(cfg.Compiler.Command, cfg.Compiler.Args...)
	}

	driverOpts := []compiler.DriverOption{compiler.WithLogger(v.logger)}
	if cfg.Compiler.SkipSyntaxPass {
		driverOpts = append(driverOpts, compiler.WithoutSyntaxPass())
	}
	v.driver = compiler.NewDriver(v.checker, driverOpts...)

	return v
}

// ValidateTypeScript validates files with the default configuration.
func ValidateTypeScript(files []types.VirtualFile) (types.ValidationResult, error) {
	return New(nil).ValidateFiles(context.Background(), files, nil)
}

// ValidateFiles validates one file set. ctx carries values such as trace
// spans; the deadline from opts or the configuration is the only thing
// that stops a running compilation.
func (v *Validator) ValidateFiles(ctx context.Context, files []types.VirtualFile, opts *Options) (types.ValidationResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	timeout := v.timeout(opts)

	ctx, span := v.tracer.Start(ctx, "ValidateFiles", trace.WithAttributes(
		attribute.String("request_id", requestID),
		attribute.Int("files", len(files)),
		attribute.Int64("timeout_ms", timeout.Milliseconds()),
	))
	defer span.End()

	logger := v.logger.With("request_id", requestID)

	set, err := fileset.Normalize(files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid input")
		logger.Debug(ctx, "Rejected file set", "error", err.Error())
		return types.ValidationResult{}, err
	}

	result := v.validate(ctx, logger, requestID, set, timeout)
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Bool("valid", result.IsValid),
		attribute.Int("diagnostics", len(result.Errors)),
	)
	if !result.IsValid {
		span.SetStatus(codes.Error, "validation failed")
	}
	logger.Info(ctx, "Validation finished",
		"valid", result.IsValid,
		"diagnostics", len(result.Errors),
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

func (v *Validator) validate(ctx context.Context, logger logging.Logger, requestID string, set *fileset.Set, timeout time.Duration) types.ValidationResult {
	if set.Len() == 0 {
		return types.NewResult(nil)
	}

	ws, err := workspace.Materialize(set, workspace.Options{
		BaseDir:  v.cfg.Workspace.BaseDir,
		ID:       requestID,
		Compiler: v.compiler,
	})
	if err != nil {
		logger.Error(ctx, err, "Failed to materialize workspace")
		return types.FailedResult(types.SourceIO, errors.CodeOf(err), fmt.Sprintf("failed to prepare workspace: %v", err))
	}
	logger.Debug(ctx, "Materialized workspace", "root", ws.Root, "files", set.Len())

	op := logging.StartOperation(logger, "compile")
	raws, done, err := runWithDeadline(ctx, timeout, func(cctx context.Context) ([]compiler.RawDiagnostic, error) {
		return v.driver.Compile(cctx, ws)
	})

	v.release(ctx, logger, ws, done)

	switch {
	case errors.IsTimeout(err):
		op.End(ctx)
		logger.Warn(ctx, err, "Compilation abandoned", "timeout", timeout.String())
		return types.FailedResult(types.SourceTimeout, errors.ErrCodeCompilationTimeout,
			fmt.Sprintf("compilation timed out after %s", timeout))
	case err != nil:
		op.EndWithError(ctx, err)
		return types.FailedResult(types.SourceInternal, errors.CodeOf(err), errors.MessageOf(err))
	}
	op.End(ctx)

	return types.NewResult(diagnostics.Map(ws, raws))
}

// release removes the workspace now and, when the compilation was
// abandoned, once more after it has actually stopped. Failures are logged
// and never change the verdict.
func (v *Validator) release(ctx context.Context, logger logging.Logger, ws *workspace.Workspace, done <-chan struct{}) {
	if v.cfg.Workspace.Keep {
		logger.Info(ctx, "Keeping workspace", "root", ws.Root)
		return
	}

	if err := ws.Release(); err != nil {
		logger.Warn(ctx, err, "Failed to remove workspace", "root", ws.Root)
	}

	select {
	case <-done:
	default:
		go func() {
			<-done
			if err := ws.RemoveLeftovers(); err != nil {
				logger.Warn(ctx, err, "Failed to remove abandoned workspace", "root", ws.Root)
			}
		}()
	}
}

func (v *Validator) timeout(opts *Options) time.Duration {
	if opts != nil && opts.TimeoutMs > 0 {
		return time.Duration(opts.TimeoutMs) * time.Millisecond
	}
	if v.cfg.Validator.Timeout > 0 {
		return v.cfg.Validator.Timeout
	}
	return config.DefaultTimeout
}
