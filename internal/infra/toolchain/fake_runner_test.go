package toolchain

import (
	"context"
	"io"
	"strings"
)

type recordedCall struct {
	dir   string
	stdin string
	line  string
}

type fakeRunner struct {
	calls  []recordedCall
	output []byte
	err    error
}

func (f *fakeRunner) Run(_ context.Context, dir string, stdin io.Reader, name string, args ...string) error {
	call := recordedCall{dir: dir, line: name + " " + strings.Join(args, " ")}
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		call.stdin = string(data)
	}
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeRunner) RunOutput(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, recordedCall{dir: dir, line: name + " " + strings.Join(args, " ")})
	return f.output, f.err
}
