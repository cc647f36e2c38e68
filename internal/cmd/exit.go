package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/core/engine"
)

// ExitWithCode logs msg with the foundry exit code metadata and exits.
// A nil logger falls back to stderr.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	if logger == nil {
		writeFatal(msg, err)
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}

	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("correlation_id", envelope.CorrelationID),
		)
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
	}
	var apiErr *engine.Error
	if stderrors.As(err, &apiErr) {
		fields = append(fields, zap.String("kind", string(apiErr.Kind)))
	}

	fields = append(fields, zap.Error(err))
	logger.Error(msg, fields...)
	os.Exit(info.Code)
}

// ExitWithCodeStderr exits without a logger. Use it for failures before the
// CLI logger exists.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	ExitWithCode(nil, exitCode, msg, err)
}

// exitCodeFor picks the foundry exit code for a command failure.
func exitCodeFor(err error) foundry.ExitCode {
	var cfgErr *configError
	if stderrors.As(err, &cfgErr) {
		return foundry.ExitConfigInvalid
	}

	var apiErr *engine.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Kind {
		case engine.KindInvalidCredentials:
			return foundry.ExitConfigInvalid
		case engine.KindRateLimited, engine.KindNetworkOrServerFault:
			return foundry.ExitExternalServiceUnavailable
		}
	}
	return foundry.ExitFailure
}

func writeFatal(msg string, err error) {
	if err == nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
		return
	}
	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) {
		fmt.Fprintf(os.Stderr, "FATAL: %s [%s]: %s (correlation: %s)\n",
			msg, envelope.Code, envelope.Message, envelope.CorrelationID)
		return
	}
	fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
}

// configError marks invalid configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return "invalid configuration: " + e.err.Error() }

func (e *configError) Unwrap() error { return e.err }
