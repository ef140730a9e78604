package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags), mirroring the teacher's
	// cmd/dwscript/cmd/root.go Version/GitCommit/BuildDate trio.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configPath string

// The three configuration switches (SPEC_FULL.md §2 "Configuration"),
// also settable directly on the CLI. A flag only overrides the loaded
// config file's value when the user actually passed it — see
// applyFlagOverrides in flags.go — so an unset flag's zero value never
// silently clobbers a config file setting.
var (
	flagGenerateExternals bool
	flagDwarfVersion      int
	flagBoundsChecks      bool
)

var rootCmd = &cobra.Command{
	Use:   "stc",
	Short: "IEC 61131-3 Structured Text AST lowering and LLVM codegen",
	Long: `stc lowers an already-parsed Structured Text AST through the
inheritance/initializer/vtable/generics pipeline, realizes ST datatypes to
LLVM backend types, and emits LLVM IR plus DWARF debug metadata.

stc does not parse .st source itself: the lexer, parser, and symbol-index
oracle are external collaborators. The "compile" and "lower" subcommands
here build a small fabricated in-memory AST to exercise the pipeline end
to end, standing in for the real parser's output during development.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (generate_externals, dwarf_version, bounds_checks)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&flagGenerateExternals, "generate-externals", false, "generate external linkage stubs (overrides config file)")
	rootCmd.PersistentFlags().IntVar(&flagDwarfVersion, "dwarf-version", 0, "DWARF version, 4 or 5 (overrides config file)")
	rootCmd.PersistentFlags().BoolVar(&flagBoundsChecks, "bounds-checks", false, "emit subrange bounds-check traps (overrides config file)")
}
