// Where: internal/domain/failure/failure.go
// What: Fatal error classes shared by the build-cargo core.
// Why: Let callers tell configuration, oracle and toolchain failures apart with errors.Is.
package failure

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks manifest or selector problems detected before any external action.
	ErrConfiguration = errors.New("configuration error")
	// ErrOracle marks registry or release lookups that failed for reasons other than "not found".
	ErrOracle = errors.New("oracle error")
	// ErrToolchain marks a failed build, test, pull, tag or push invocation.
	ErrToolchain = errors.New("toolchain failure")
)

// Configuration wraps a formatted message as a configuration error.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Oracle wraps err as an oracle error with context.
func Oracle(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrOracle, fmt.Sprintf(format, args...), err)
}

// Toolchain wraps err as a toolchain failure with context.
func Toolchain(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrToolchain, fmt.Sprintf(format, args...), err)
}

// IsFatal reports whether err belongs to one of the fatal classes.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrOracle) || errors.Is(err, ErrToolchain)
}
