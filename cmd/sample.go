package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/radial/internal/adapters/repository"
	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/internal/samplevotes"
	"github.com/okian/radial/pkg/logger"
)

const pollInterval = 200 * time.Millisecond

type sampleFlags struct {
	gen           samplevotes.Config
	out           string
	submit        string
	async         bool
	timeout       time.Duration
	homogeneous   int
	heterogeneous int
}

func (c *cli) sampleCmd() *cobra.Command {
	f := sampleFlags{gen: samplevotes.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate synthetic ballots, optionally posting them to a server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.sample(cmd, &f)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&f.gen.Participants, "participants", samplevotes.DefaultParticipants, "number of participants")
	fs.IntVar(&f.gen.Projects, "projects", samplevotes.DefaultProjects, "number of projects")
	fs.IntVar(&f.gen.Camps, "camps", samplevotes.DefaultCamps, "number of opinion camps")
	fs.Float64Var(&f.gen.Noise, "noise", samplevotes.DefaultNoise, "probability a vote ignores its camp")
	fs.Float64Var(&f.gen.AbstainRate, "abstain-rate", samplevotes.DefaultAbstainRate, "probability of a blank cell")
	fs.Int64Var(&f.gen.Seed, "seed", samplevotes.DefaultSeed, "generator seed")
	fs.BoolVar(&f.gen.UUIDs, "uuids", false, "use random UUIDs as participant ids")
	fs.StringVarP(&f.out, "out", "o", "-", "ballot CSV destination, - for stdout, empty to skip")
	fs.StringVar(&f.submit, "submit", "", "base URL of a radial server to post the ballots to")
	fs.BoolVar(&f.async, "async", false, "queue the submitted run and poll until it finishes")
	fs.DurationVar(&f.timeout, "timeout", samplevotes.DefaultTimeout, "HTTP request timeout")
	fs.IntVarP(&f.homogeneous, "homogeneous", "k", 0, "homogeneous groups for the submitted run")
	fs.IntVarP(&f.heterogeneous, "heterogeneous", "H", 0, "heterogeneous groups for the submitted run")
	return cmd
}

func (c *cli) sample(cmd *cobra.Command, f *sampleFlags) error {
	ctx := cmd.Context()
	log := logger.Get().Named("sample")

	m, err := samplevotes.Generate(f.gen)
	if err != nil {
		return err
	}
	if err := writeBallots(cmd, f.out, m); err != nil {
		return err
	}
	if f.submit == "" {
		return nil
	}

	client := samplevotes.NewClient(f.submit, f.timeout)
	if err := client.CheckHealth(ctx); err != nil {
		return err
	}
	req := samplevotes.NewRequest(m)
	req.HomogeneousGroups = f.homogeneous
	req.HeterogeneousGroups = f.heterogeneous
	run, err := client.Submit(ctx, req, f.async)
	if err != nil {
		return err
	}
	if run.Status == repository.StatusPending {
		log.Info(ctx, "run queued", logger.String("run_id", run.ID))
		if run, err = client.Wait(ctx, run.ID, pollInterval); err != nil {
			return err
		}
	}
	if run.Status == repository.StatusFailed {
		return fmt.Errorf("run %s failed: %s", run.ID, run.Error)
	}
	log.Info(ctx, "run completed",
		logger.String("run_id", run.ID),
		logger.Int("participants", run.Participants),
		logger.Int("homogeneous", run.HomogeneousGroups),
		logger.Int("heterogeneous", run.HeterogeneousGroups))
	return nil
}

func writeBallots(cmd *cobra.Command, out string, m *preference.Matrix) (err error) {
	switch out {
	case "":
		return nil
	case "-":
		return samplevotes.WriteCSV(cmd.OutOrStdout(), m)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", out, cerr)
		}
	}()
	return samplevotes.WriteCSV(f, m)
}
