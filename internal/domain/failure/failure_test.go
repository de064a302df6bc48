package failure

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigurationWrapsSentinel(t *testing.T) {
	err := Configuration("unknown image %q", "foo")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), `unknown image "foo"`) {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestOracleKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Oracle(cause, "inspect %s", "reg/foo:1.0")
	if !errors.Is(err, ErrOracle) || !errors.Is(err, cause) {
		t.Fatalf("expected oracle error wrapping cause, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(Toolchain(errors.New("exit 1"), "docker push")) {
		t.Fatalf("toolchain failure should be fatal")
	}
	if IsFatal(errors.New("plain")) {
		t.Fatalf("plain error should not be classified")
	}
}
