package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "project-finance %s (commit %s, built %s)\n", version, commit, date)
			if err != nil {
				return err
			}
			if bi, ok := debug.ReadBuildInfo(); ok && bi.GoVersion != "" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "go %s\n", bi.GoVersion)
			}
			return err
		},
	}
}
