package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-stc/stc/internal/config"
)

// applyFlagOverrides implements SPEC_FULL.md §2's "CLI flags override file
// values": cfg has already been loaded from --config (or defaulted), and
// only the switches the caller actually passed on this invocation (per
// cobra's Changed tracking) replace what the file set.
func applyFlagOverrides(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("generate-externals") {
		cfg.GenerateExternals = flagGenerateExternals
	}
	if flags.Changed("dwarf-version") {
		cfg.DwarfVersion = flagDwarfVersion
	}
	if flags.Changed("bounds-checks") {
		cfg.BoundsChecks = flagBoundsChecks
	}
	return cfg
}
