// Where: cmd/build-cargo/main.go
// What: CLI entrypoint.
// Why: Execute cargo builds with production dependencies.
package main

import (
	"os"

	"github.com/poruru-code/cargo-builder/internal/app"
)

func main() {
	deps, closer := buildDependencies()
	code := app.Run(os.Args[1:], deps)
	_ = closer.Close()
	os.Exit(code)
}
