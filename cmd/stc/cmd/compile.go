package cmd

import (
	"fmt"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/spf13/cobra"

	"github.com/go-stc/stc/internal/codegen"
	"github.com/go-stc/stc/internal/config"
	"github.com/go-stc/stc/internal/debuginfo"
	"github.com/go-stc/stc/internal/errors"
)

var (
	compileOutputFile string
	emitSymbolsJSON   string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Run the fabricated smoke-test unit through codegen and print LLVM IR",
	Long: `compile lowers the fabricated in-memory compilation unit (see
smokeTestUnit) through internal/codegen and internal/debuginfo, and prints
the resulting LLVM IR module — standing in for the real pipeline's output
once a parser feeds it an actual surface AST (spec §1 "out of scope").`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileOutputFile, "output", "o", "", "write IR to this file instead of stdout")
	compileCmd.Flags().StringVar(&emitSymbolsJSON, "emit-symbols-json", "", "also write the symbol map (type constructors, vtables, global-ctor priority) to this file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = applyFlagOverrides(cmd, cfg)

	unit, o, _ := smokeTestUnit()

	module := ir.NewModule()
	bag := &errors.Bag{}
	gen := codegen.NewGenerator(module, o, bag, cfg.ToCodegenConfig())

	// Opening the Debug Info Builder before EmitUnit has emitFuncBody
	// attach a DISubprogram to every emitted function (spec §4.7); per-
	// statement DILocation attachment is a further follow-on, since that
	// requires threading Source Location through every expression, which
	// the fabricated fixture here does not populate.
	gen.DebugInfo = debuginfo.NewBuilder(module, "smoke.st", ".", cfg.DwarfVersion)
	gen.EmitUnit(unit)

	if bag.HasErrors() {
		for _, d := range bag.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.Format(""))
		}
		return fmt.Errorf("compilation failed with %d error(s)", len(bag.Diagnostics()))
	}

	if emitSymbolsJSON != "" {
		doc, err := gen.SymbolsJSON()
		if err != nil {
			return fmt.Errorf("build symbols JSON: %w", err)
		}
		if err := os.WriteFile(emitSymbolsJSON, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write symbols JSON: %w", err)
		}
	}

	out := module.String()
	if compileOutputFile == "" {
		fmt.Println(out)
		return nil
	}
	return os.WriteFile(compileOutputFile, []byte(out), 0o644)
}
