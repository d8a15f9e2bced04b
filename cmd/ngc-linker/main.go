package main

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newRootCommand builds the command tree. Files are read and written through
// fs; diagnostics go to stderr.
func newRootCommand(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "ngc-linker",
		Short: "Link partially compiled Angular libraries",
		Long: `ngc-linker finishes the compilation of Angular libraries that were published
in partial compilation mode, replacing every ɵɵngDeclare* call with the
matching ɵɵdefine* definition.`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("config", "", "config file (default ./ngc-linker.{yaml,toml,json})")
	root.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	root.PersistentFlags().String("log-format", "console", "log format (console|json)")

	root.AddCommand(newLinkCommand(fs))
	root.AddCommand(newVersionCommand())
	return root
}

func main() {
	if err := newRootCommand(afero.NewOsFs(), os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
