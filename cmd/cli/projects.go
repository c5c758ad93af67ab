package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/i5heu/ouroboros-records/pkg/projects"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/spf13/cobra"
)

func newVoteCmd(opts *options) *cobra.Command {
	var vote projects.GoalVote

	cmd := &cobra.Command{
		Use:   "vote <goal-address>",
		Short: "Record your weighting of a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := types.ParseActionRef(args[0])
			if err != nil {
				return fmt.Errorf("invalid goal address: %w", err)
			}

			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			vote.GoalAddress = goal
			vote.AgentAddress = r.Identity()
			vote.UnixTimestamp = float64(time.Now().Unix())

			created, err := r.GoalVotes().Create(cmd.Context(), vote)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vote %s\n", color.CyanString(created.Address.String()))
			return nil
		},
	}

	cmd.Flags().Float64Var(&vote.Urgency, "urgency", 0.5, "urgency between 0 and 1")
	cmd.Flags().Float64Var(&vote.Importance, "importance", 0.5, "importance between 0 and 1")
	cmd.Flags().Float64Var(&vote.Impact, "impact", 0.5, "impact between 0 and 1")
	cmd.Flags().Float64Var(&vote.Effort, "effort", 0.5, "effort between 0 and 1")
	return cmd
}

func newVotesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "votes",
		Short: "List all goal votes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			votes, err := r.GoalVotes().List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(votes))
			for _, v := range votes {
				e := v.Entry
				rows = append(rows, []string{
					short(e.GoalAddress.String()),
					short(e.AgentAddress.String()),
					formatFloat(e.Urgency),
					formatFloat(e.Importance),
					formatFloat(e.Impact),
					formatFloat(e.Effort),
				})
			}
			return renderTable(cmd.OutOrStdout(), []string{"Goal", "Agent", "Urgency", "Importance", "Impact", "Effort"}, rows)
		},
	}
}
