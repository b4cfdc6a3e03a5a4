package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <grade> [subject] [difficulty]",
		Short: "Print the bank keys a request resolves to",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := locator(cmd)
			if err != nil {
				return err
			}

			var subject, difficulty string
			if len(args) > 1 {
				subject = args[1]
			}
			if len(args) > 2 {
				difficulty = args[2]
			}

			key := loc.Locate(args[0], subject, difficulty)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "primary:  %s\n", key.Primary)
			if key.HasFallback() {
				fmt.Fprintf(out, "fallback: %s\n", key.Fallback)
			}
			return nil
		},
	}
}
