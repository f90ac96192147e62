package rounds

import (
	"context"
	"errors"
	"math/rand"

	"github.com/okian/radial/internal/domain/balance"
	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/internal/domain/reduction"
	"github.com/okian/radial/internal/domain/seed"
)

// Request describes one grouping run.
type Request struct {
	// Attendance lists round-one participants; nil means the whole matrix.
	Attendance []string
	// SecondRoundAttendance must be a subset of round one; nil means the
	// same people as round one.
	SecondRoundAttendance []string
	// HomogeneousGroups is K, HeterogeneousGroups is H.
	HomogeneousGroups   int
	HeterogeneousGroups int
	Seed                int64
}

// Result holds everything a run produced.
type Result struct {
	Seed              int64              `json:"seed"`
	Stage             model.Round        `json:"stage"`
	Degenerate        bool               `json:"degenerate"`
	ExplainedVariance [2]float64         `json:"explained_variance"`
	Projections       []model.Projection `json:"projections"`
	Sectors           []model.Sector     `json:"sectors"`
	Homogeneous       []model.Group      `json:"homogeneous"`
	Heterogeneous     []model.Group      `json:"heterogeneous"`
	Assignments       []model.Assignment `json:"assignments"`
}

// Orchestrator drives a matrix through both rounds.
type Orchestrator struct {
	reducer  reduction.Reducer
	balancer *balance.Balancer
	fallback bool
}

// New creates an Orchestrator with configuration options.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reducer:  reduction.NewPCA(),
		balancer: balance.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run builds homogeneous groups from the opinion plane and then
// heterogeneous groups by redistributing them. It fails without partial
// output; every error is one of the grouperr kinds.
func (o *Orchestrator) Run(ctx context.Context, m *preference.Matrix, req Request) (*Result, error) {
	if m == nil {
		return nil, grouperr.Invalid("matrix", "nil preference matrix")
	}
	if req.HomogeneousGroups < 1 {
		return nil, grouperr.Invalid("homogeneous_groups", "must be positive, got %d", req.HomogeneousGroups)
	}
	if req.HeterogeneousGroups < 1 {
		return nil, grouperr.Invalid("heterogeneous_groups", "must be positive, got %d", req.HeterogeneousGroups)
	}

	first := m
	if req.Attendance != nil {
		sub, err := m.Subset(req.Attendance)
		if err != nil {
			return nil, err
		}
		first = sub
	}
	second, err := secondRound(first, req.SecondRoundAttendance)
	if err != nil {
		return nil, err
	}

	minSize := o.balancer.MinGroupSize()
	if err := balance.CheckFeasible(first.Rows(), req.HomogeneousGroups, minSize); err != nil {
		return nil, err
	}
	if err := balance.CheckFeasible(len(second), req.HeterogeneousGroups, minSize); err != nil {
		return nil, err
	}

	res := &Result{Seed: req.Seed}
	red, err := o.reducer.Reduce(ctx, first)
	switch {
	case errors.Is(err, grouperr.ErrDegenerateInput) && o.fallback:
		red = origin(first)
		res.Degenerate = true
	case err != nil:
		return nil, err
	}
	if len(red.Projections) != first.Rows() {
		return nil, grouperr.Invalid("reduction", "%d projections for %d participants", len(red.Projections), first.Rows())
	}
	res.Projections = red.Projections
	res.ExplainedVariance = red.ExplainedVariance

	res.Sectors, res.Homogeneous, err = o.balancer.Balance(red.Projections, nil, req.HomogeneousGroups,
		seed.Derive(req.Seed, seed.StreamSectorPhase))
	if err != nil {
		return nil, err
	}
	res.Stage = model.Homogeneous

	res.Heterogeneous, err = Redistribute(res.Homogeneous, second, req.HeterogeneousGroups,
		seed.Derive(req.Seed, seed.StreamRedistribute))
	if err != nil {
		return nil, err
	}
	res.Stage = model.Heterogeneous
	res.Assignments = assignments(res)
	return res, nil
}

// Redistribute builds h heterogeneous groups using the homogeneous groups as
// strata. Only members in attending take part; nil means all of them.
//
// Each stratum is shuffled, then strata are dealt one member at a time to
// consecutive groups starting at a random offset. A stratum no larger than h
// therefore never places two members in the same group, a larger one is
// spread as evenly as possible, and group sizes differ by at most one.
func Redistribute(strata []model.Group, attending map[string]bool, h int, rng *rand.Rand) ([]model.Group, error) {
	if h < 1 {
		return nil, grouperr.Invalid("heterogeneous_groups", "must be positive, got %d", h)
	}
	rng = seed.Or(rng)

	pools := make([][]string, len(strata))
	var total int
	for i, s := range strata {
		for _, id := range s.Members {
			if attending == nil || attending[id] {
				pools[i] = append(pools[i], id)
			}
		}
		total += len(pools[i])
	}
	if h > total {
		return nil, &grouperr.InfeasibleGroupingError{Requested: h, MaxFeasible: total, Attending: total, MinSize: 1}
	}

	labels := balance.NumericLabels(h)
	groups := make([]model.Group, h)
	for i := range groups {
		groups[i] = model.Group{Round: model.Heterogeneous, Label: labels[i], Sector: -1}
	}

	pos := rng.Intn(h)
	for _, pool := range pools {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for _, id := range pool {
			groups[pos%h].Members = append(groups[pos%h].Members, id)
			pos++
		}
	}
	return groups, nil
}

// secondRound resolves round-two attendance against the round-one matrix.
func secondRound(first *preference.Matrix, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if ids == nil {
		for _, id := range first.IDs() {
			out[id] = true
		}
		return out, nil
	}
	for _, id := range ids {
		if !first.Has(id) {
			return nil, grouperr.Invalid("second_round_attendance", "%q did not attend round one", id)
		}
		out[id] = true
	}
	return out, nil
}

func origin(m *preference.Matrix) *reduction.Reduction {
	ids := m.IDs()
	out := &reduction.Reduction{Projections: make([]model.Projection, len(ids))}
	for i, id := range ids {
		out.Projections[i] = reduction.Polar(id, 0, 0)
	}
	return out
}

func assignments(res *Result) []model.Assignment {
	homo := make(map[string]model.Group, len(res.Projections))
	for _, g := range res.Homogeneous {
		for _, id := range g.Members {
			homo[id] = g
		}
	}
	hetero := make(map[string]string, len(res.Projections))
	for _, g := range res.Heterogeneous {
		for _, id := range g.Members {
			hetero[id] = g.Label
		}
	}
	out := make([]model.Assignment, len(res.Projections))
	for i, p := range res.Projections {
		g := homo[p.ParticipantID]
		out[i] = model.Assignment{
			ParticipantID:      p.ParticipantID,
			Angle:              p.Angle,
			Radius:             p.Radius,
			PC1:                p.PC1,
			PC2:                p.PC2,
			HomogeneousSector:  g.Sector,
			HomogeneousLabel:   g.Label,
			HeterogeneousLabel: hetero[p.ParticipantID],
		}
	}
	return out
}
