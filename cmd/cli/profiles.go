package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/i5heu/ouroboros-records/pkg/profiles"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func statusString(s profiles.Status) string {
	switch s {
	case profiles.Online:
		return color.GreenString(string(s))
	case profiles.Away:
		return color.YellowString(string(s))
	default:
		return color.RedString(string(profiles.Offline))
	}
}

var profileFlags = []string{"first-name", "last-name", "handle", "avatar", "status"}

func anyChanged(flags *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

func newWhoAmICmd(opts *options) *cobra.Command {
	var set profiles.Profile
	var status string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show your profile, or create and update it with flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			ctx := cmd.Context()
			service := r.Profiles()
			me, exists, err := service.WhoAmI(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if anyChanged(flags, profileFlags...) {
				profile := me.Entry
				if flags.Changed("first-name") {
					profile.FirstName = set.FirstName
				}
				if flags.Changed("last-name") {
					profile.LastName = set.LastName
				}
				if flags.Changed("handle") {
					profile.Handle = set.Handle
				}
				if flags.Changed("avatar") {
					profile.AvatarURL = set.AvatarURL
				}
				if flags.Changed("status") {
					profile.Status = profiles.ParseStatus(status)
				}
				profile.Address = service.FetchAgentAddress()

				if exists {
					me.Entry = profile
					me, err = service.UpdateWhoAmI(ctx, me)
				} else {
					me, err = service.CreateWhoAmI(ctx, profile)
				}
				if err != nil {
					return err
				}
				exists = true
			}

			if !exists {
				fmt.Fprintf(cmd.OutOrStdout(), "no profile for %s, create one with --handle\n", short(service.FetchAgentAddress().String()))
				return nil
			}
			p := me.Entry
			return renderTable(cmd.OutOrStdout(),
				[]string{"Handle", "Name", "Status", "Avatar", "Address"},
				[][]string{{p.Handle, strings.TrimSpace(p.FirstName + " " + p.LastName), statusString(p.Status), p.AvatarURL, me.Address.String()}})
		},
	}

	cmd.Flags().StringVar(&set.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&set.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&set.Handle, "handle", "", "handle")
	cmd.Flags().StringVar(&set.AvatarURL, "avatar", "", "avatar url")
	cmd.Flags().StringVar(&status, "status", "", "Online, Away or Offline")
	return cmd
}

func newAgentsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the latest profile of every agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			agents, err := r.Profiles().FetchAgents(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(agents))
			for _, p := range agents {
				rows = append(rows, []string{p.Handle, strings.TrimSpace(p.FirstName + " " + p.LastName), statusString(p.Status), short(p.Address.String())})
			}
			return renderTable(cmd.OutOrStdout(), []string{"Handle", "Name", "Status", "Agent"}, rows)
		},
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history <profile-address>",
		Short: "Show every version of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := types.ParseActionRef(args[0])
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}

			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			versions, err := r.Profiles().Operations().History(cmd.Context(), address)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(versions))
			for i, p := range versions {
				rows = append(rows, []string{fmt.Sprint(i), p.Handle, statusString(p.Status)})
			}
			return renderTable(cmd.OutOrStdout(), []string{"Version", "Handle", "Status"}, rows)
		},
	}
}
