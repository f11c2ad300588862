package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
)

// GlobalFlags holds global flags available to all commands
type GlobalFlags struct {
	Verbose      bool
	Quiet        bool
	OutputFormat string
	ConfigFile   string
}

var globalFlags = &GlobalFlags{}

// RegisterGlobalFlags registers persistent flags on the root command
func RegisterGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "", "Output format (text|json); defaults to text on a terminal and json otherwise")
	cmd.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "", "Path to config file (default: ~/.fraudgraph/config.yaml)")
}

// ParseGlobalFlags validates the global flags.
func ParseGlobalFlags(cmd *cobra.Command) (*GlobalFlags, error) {
	switch internal.OutputFormat(globalFlags.OutputFormat) {
	case "", internal.FormatText, internal.FormatJSON:
	default:
		return nil, internal.NewCLIError(internal.ExitValidationError,
			fmt.Sprintf("invalid output format %q (expected text or json)", globalFlags.OutputFormat))
	}

	if globalFlags.Verbose && globalFlags.Quiet {
		return nil, internal.NewCLIError(internal.ExitValidationError, "--verbose and --quiet cannot be used together")
	}

	return globalFlags, nil
}

// GetOutputFormat returns the requested format, or the detected one when
// --output was not given.
func (f *GlobalFlags) GetOutputFormat() internal.OutputFormat {
	switch internal.OutputFormat(f.OutputFormat) {
	case internal.FormatJSON:
		return internal.FormatJSON
	case internal.FormatText:
		return internal.FormatText
	default:
		return internal.DetectFormat(os.Stdout)
	}
}

// IsVerbose returns true if verbose mode is enabled
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose && !f.Quiet
}

// IsQuiet returns true if quiet mode is enabled
func (f *GlobalFlags) IsQuiet() bool {
	return f.Quiet
}
