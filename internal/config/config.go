// Package config holds the toolchain's process-wide toggles. Flags set
// on the command line always win; each falls back to an environment
// variable read through github.com/xyproto/env/v2.
package config

import "github.com/xyproto/env/v2"

const BaseAddress = 0x400000

// Config is the resolved set of toggles the CLI hands down to every
// pipeline stage. It is constructed once in cmd/minic and passed by
// value or pointer; nothing here is a package-level global.
type Config struct {
	Verbose     bool
	ATT         bool // true = AT&T dialect, false = Intel
	BaseAddress uint64
}

// Default builds a Config from environment fallbacks:
//   - MINIC_VERBOSE: verbose diagnostics
//   - MINIC_ATT: AT&T syntax by default instead of Intel
//   - MINIC_BASE_ADDRESS: override the executable's load address
func Default() Config {
	return Config{
		Verbose:     env.Bool("MINIC_VERBOSE"),
		ATT:         env.Bool("MINIC_ATT"),
		BaseAddress: uint64(env.Int("MINIC_BASE_ADDRESS", BaseAddress)),
	}
}

// Apply overlays command-line-derived overrides onto env-derived
// defaults; a zero BaseAddress means "not set on the command line".
func (c Config) Apply(verbose, att bool, baseAddress uint64) Config {
	c.Verbose = c.Verbose || verbose
	if att {
		c.ATT = true
	}
	if baseAddress != 0 {
		c.BaseAddress = baseAddress
	}
	return c
}
