package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			s, err := r.Stats()
			if err != nil {
				return err
			}
			return renderTable(cmd.OutOrStdout(), []string{"Versions", "Relations", "Edges", "Chunks", "Reads", "Writes"},
				[][]string{{
					fmt.Sprint(s.Versions),
					fmt.Sprint(s.Relations),
					fmt.Sprint(s.Edges),
					fmt.Sprint(s.Chunks),
					fmt.Sprint(s.Reads),
					fmt.Sprint(s.Writes),
				}})
		},
	}
}
