package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/fatih/color"
	ouroboros "github.com/i5heu/ouroboros-records"
	"github.com/i5heu/ouroboros-records/internal/workerPool"
	"github.com/i5heu/ouroboros-records/pkg/ledger"
	"github.com/i5heu/ouroboros-records/pkg/profiles"
	"github.com/i5heu/ouroboros-records/pkg/projects"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/spf13/cobra"
)

var (
	seedFirstNames = []string{"Ana", "Bo", "Cy", "Dee", "Eli", "Fay", "Gus", "Hal"}
	seedLastNames  = []string{"Lind", "Moss", "Nagy", "Ortiz", "Park", "Quinn"}
	seedStatuses   = []profiles.Status{profiles.Online, profiles.Away, profiles.Offline}
)

type seedResult struct {
	agent types.IdentityKey
	err   error
}

func newSeedCmd(opts *options) *cobra.Command {
	var agents, updates, workers int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with mock agents, profile updates and votes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			ctx := cmd.Context()
			goal, _, err := r.Chain().Create(ctx, "goal", []byte(fmt.Sprintf("seed goal %d", time.Now().UnixNano())))
			if err != nil {
				return err
			}

			wp := workerPool.NewWorkerPool(workerPool.Config{WorkerCount: workers})
			defer wp.Close()
			room := workerPool.NewRoom[seedResult](wp, agents)

			for i := 0; i < agents; i++ {
				rng := rand.New(rand.NewSource(seed + int64(i)))
				room.NewTaskWaitForFreeSlot(func() seedResult {
					return seedAgent(ctx, r, goal, updates, rng)
				})
			}

			failed := 0
			for _, res := range room.Collect() {
				if res.err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.RedString("seed failed:"), res.err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d agents voting on goal %s\n", agents-failed, color.CyanString(goal.String()))
			if failed > 0 {
				return fmt.Errorf("%d of %d agents failed", failed, agents)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&agents, "agents", 10, "number of mock agents")
	cmd.Flags().IntVar(&updates, "updates", 3, "profile updates per agent")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent writers, 0 for three per CPU")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func seedAgent(ctx context.Context, r *ouroboros.Records, goal types.ActionRef, updates int, rng *rand.Rand) seedResult {
	id, err := ledger.NewIdentity()
	if err != nil {
		return seedResult{err: err}
	}
	peer, err := r.Peer(id)
	if err != nil {
		return seedResult{agent: id.Key(), err: err}
	}

	first := seedFirstNames[rng.Intn(len(seedFirstNames))]
	profile, err := peer.Profiles.CreateWhoAmI(ctx, profiles.Profile{
		FirstName: first,
		LastName:  seedLastNames[rng.Intn(len(seedLastNames))],
		Handle:    fmt.Sprintf("%s%d", first, rng.Intn(1000)),
		Status:    profiles.Online,
		Address:   id.Key(),
	})
	if err != nil {
		return seedResult{agent: id.Key(), err: err}
	}

	for i := 0; i < updates; i++ {
		profile.Entry.Status = seedStatuses[rng.Intn(len(seedStatuses))]
		if profile, err = peer.Profiles.UpdateWhoAmI(ctx, profile); err != nil {
			return seedResult{agent: id.Key(), err: err}
		}
	}

	_, err = peer.GoalVotes.Create(ctx, projects.GoalVote{
		GoalAddress:   goal,
		Urgency:       rng.Float64(),
		Importance:    rng.Float64(),
		Impact:        rng.Float64(),
		Effort:        rng.Float64(),
		AgentAddress:  id.Key(),
		UnixTimestamp: float64(time.Now().Unix()),
	})
	return seedResult{agent: id.Key(), err: err}
}
