// Command minic drives the toolchain end to end: compiling a frontend
// AST to assembly text, assembling text to a relocatable ELF64
// object, and linking an object into an executable — or assembling
// and linking in one invocation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/minic/internal/config"
)

func main() {
	var (
		verbose     bool
		att         bool
		intel       bool
		baseAddress uint64
	)

	rootCmd := &cobra.Command{
		Use:           "minic",
		Short:         "A small toolchain for a tiny C-like language, targeting 64-bit x86 Linux",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print each pipeline stage's progress")
	rootCmd.PersistentFlags().BoolVar(&att, "att", false, "use AT&T assembly syntax instead of Intel")
	rootCmd.PersistentFlags().BoolVar(&intel, "intel", false, "use Intel assembly syntax (default)")
	rootCmd.PersistentFlags().Uint64Var(&baseAddress, "base-address", 0, "executable load address (default "+addrDefault()+")")

	resolveConfig := func() config.Config {
		cfg := config.Default().Apply(verbose, att, baseAddress)
		if intel {
			cfg.ATT = false
		}
		return cfg
	}

	rootCmd.AddCommand(
		newCompileCmd(resolveConfig),
		newAssembleCmd(resolveConfig),
		newLinkCmd(resolveConfig),
		newBuildCmd(resolveConfig),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "minic:", err)
		os.Exit(1)
	}
}

func addrDefault() string {
	return fmt.Sprintf("%#x", config.BaseAddress)
}
