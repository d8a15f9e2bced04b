package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ngc-linker/packages/compiler/core"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the linker version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := core.NewVersion(core.BuildVersion)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ngc-linker %s.%s.%s\n",
				versionMajorColor.Sprint(v.Major),
				versionMinorColor.Sprint(v.Minor),
				versionPatchColor.Sprint(v.Patch),
			)
			return err
		},
	}
}
