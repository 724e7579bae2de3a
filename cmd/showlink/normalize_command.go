package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showlink/internal/match"
)

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "normalize <title>...",
		Short:       "Print the slug each title is compared as",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfig": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", match.SearchTerm(arg), match.Normalize(arg))
			}
			return nil
		},
	}
}
