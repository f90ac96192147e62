package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/radial/internal/adapters/export"
	"github.com/okian/radial/internal/adapters/votes"
	service "github.com/okian/radial/internal/app"
	"github.com/okian/radial/pkg/logger"
)

type groupFlags struct {
	attendance    string
	secondRound   string
	out           string
	homogeneous   int
	heterogeneous int
	seed          int64
}

func (c *cli) groupCmd() *cobra.Command {
	var f groupFlags
	cmd := &cobra.Command{
		Use:   "group <votes.csv>",
		Short: "Assign participants of a ballot CSV to both rounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.group(cmd, args[0], &f)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.attendance, "attendance", "", "CSV of round-one attendee ids (default: everyone)")
	fs.StringVar(&f.secondRound, "second-round", "", "CSV of round-two attendee ids (default: round one)")
	fs.StringVarP(&f.out, "out", "o", "-", "assignment CSV destination, - for stdout")
	fs.IntVarP(&f.homogeneous, "homogeneous", "k", 0, "homogeneous groups (overrides config)")
	fs.IntVarP(&f.heterogeneous, "heterogeneous", "H", 0, "heterogeneous groups (overrides config)")
	fs.Int64Var(&f.seed, "seed", 0, "random seed (overrides config)")
	return cmd
}

func (c *cli) group(cmd *cobra.Command, path string, f *groupFlags) error {
	ctx := cmd.Context()
	log := logger.Get().Named("group")

	m, err := votes.Load(path)
	if err != nil {
		return err
	}

	var p service.Params
	if f.attendance != "" {
		if p.Attendance, err = votes.LoadAttendance(f.attendance); err != nil {
			return err
		}
	}
	if f.secondRound != "" {
		if p.SecondRoundAttendance, err = votes.LoadAttendance(f.secondRound); err != nil {
			return err
		}
	}
	fs := cmd.Flags()
	if fs.Changed("homogeneous") {
		p.HomogeneousGroups = &f.homogeneous
	}
	if fs.Changed("heterogeneous") {
		p.HeterogeneousGroups = &f.heterogeneous
	}
	if fs.Changed("seed") {
		p.Seed = &f.seed
	}

	svc := service.NewFromConfig(c.cfg, service.WithLogger(log))
	run, err := svc.Run(ctx, m, p)
	if err != nil {
		return fmt.Errorf("group %s: %w", path, err)
	}

	if f.out == "-" {
		err = export.WriteAssignments(cmd.OutOrStdout(), run.Result.Assignments)
	} else {
		err = export.WriteFile(f.out, run.Result.Assignments)
	}
	if err != nil {
		return err
	}
	log.Info(ctx, "assignments written",
		logger.String("out", f.out),
		logger.Int("participants", run.Participants),
		logger.Int("homogeneous", run.HomogeneousGroups),
		logger.Int("heterogeneous", run.HeterogeneousGroups),
		logger.Int64("seed", run.Result.Seed))
	return nil
}
