// Command stc is the thin CLI driver shell (SPEC_FULL.md §2 "CLI shell"):
// it owns no lowering or codegen logic of its own, only flag parsing,
// config loading, and wiring a fabricated in-memory AST/Oracle pair into
// the core pipeline for smoke-testing — the real parser that would feed
// it a surface AST from actual .st source is out of scope (spec §1).
package main

import (
	"fmt"
	"os"

	"github.com/go-stc/stc/cmd/stc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
