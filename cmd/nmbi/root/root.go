package root

import (
	"github.com/i-c-grant/ni-meister-gedi-biomass/cmd/nmbi/process"
	"github.com/i-c-grant/ni-meister-gedi-biomass/cmd/nmbi/validate"
	"github.com/i-c-grant/ni-meister-gedi-biomass/cmd/nmbi/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for nmbi.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nmbi",
		Short: "CLI: Ni-Meister Biomass Index processing for GEDI waveform returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(validate.Cmd)
	cmd.AddCommand(process.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
