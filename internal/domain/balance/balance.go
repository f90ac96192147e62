package balance

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/radial"
)

const defaultMinGroupSize = 1

// Balancer reconciles sector output with attendance, minimum group size and
// labeling.
type Balancer struct {
	partitioner Partitioner
	minSize     int
	labels      []string
}

// New creates a Balancer with configuration options.
func New(opts ...Option) *Balancer {
	b := &Balancer{
		partitioner: radial.New(),
		minSize:     defaultMinGroupSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MinGroupSize returns the configured minimum group size.
func (b *Balancer) MinGroupSize() int { return b.minSize }

// Balance partitions the attending participants into k homogeneous groups.
//
// attending selects who takes part; nil means everyone. Absent participants
// are dropped before partitioning so the sectors balance over the attending
// count only. Groups are labeled in canonical sector order.
func (b *Balancer) Balance(projections []model.Projection, attending map[string]bool, k int, rng *rand.Rand) ([]model.Sector, []model.Group, error) {
	if k < 1 {
		return nil, nil, grouperr.Invalid("k", "group count must be positive, got %d", k)
	}
	present := Present(projections, attending)
	if err := CheckFeasible(len(present), k, b.minSize); err != nil {
		return nil, nil, err
	}
	labels, err := b.Labels(k)
	if err != nil {
		return nil, nil, err
	}

	sectors, err := b.partitioner.Partition(present, k, rng)
	if err != nil {
		return nil, nil, err
	}
	groups := make([]model.Group, len(sectors))
	for i, s := range sectors {
		groups[i] = model.Group{
			Round:   model.Homogeneous,
			Label:   labels[i],
			Sector:  s.Index,
			Members: append([]string(nil), s.Members...),
		}
	}
	return sectors, groups, nil
}

// Labels returns k labels: the explicit ones when configured, otherwise
// spreadsheet-style letters A..Z, AA, AB...
func (b *Balancer) Labels(k int) ([]string, error) {
	if len(b.labels) == 0 {
		return LetterLabels(k), nil
	}
	if len(b.labels) < k {
		return nil, grouperr.Invalid("labels", "%d labels for %d groups", len(b.labels), k)
	}
	seen := make(map[string]struct{}, k)
	for _, l := range b.labels[:k] {
		if strings.TrimSpace(l) == "" {
			return nil, grouperr.Invalid("labels", "empty label")
		}
		if _, dup := seen[l]; dup {
			return nil, grouperr.Invalid("labels", "duplicate label %q", l)
		}
		seen[l] = struct{}{}
	}
	return append([]string(nil), b.labels[:k]...), nil
}

// Present filters projections to the attending participants, keeping order.
func Present(projections []model.Projection, attending map[string]bool) []model.Projection {
	if attending == nil {
		return append([]model.Projection(nil), projections...)
	}
	out := make([]model.Projection, 0, len(projections))
	for _, p := range projections {
		if attending[p.ParticipantID] {
			out = append(out, p)
		}
	}
	return out
}

// CheckFeasible reports whether n participants can form k groups of at least
// minSize. The error carries the largest feasible group count.
func CheckFeasible(n, k, minSize int) error {
	if k < 1 {
		return grouperr.Invalid("k", "group count must be positive, got %d", k)
	}
	if minSize < 1 {
		minSize = 1
	}
	if n == 0 {
		return grouperr.Invalid("attendance", "no attending participants")
	}
	if k > n || n/k < minSize {
		return &grouperr.InfeasibleGroupingError{
			Requested:   k,
			MaxFeasible: n / minSize,
			Attending:   n,
			MinSize:     minSize,
		}
	}
	return nil
}

// LetterLabels returns A..Z, AA, AB, ... for k groups.
func LetterLabels(k int) []string {
	out := make([]string, k)
	for i := range out {
		var sb []byte
		for n := i; ; n = n/26 - 1 {
			sb = append([]byte{byte('A' + n%26)}, sb...)
			if n < 26 {
				break
			}
		}
		out[i] = string(sb)
	}
	return out
}

// NumericLabels returns "1".."k".
func NumericLabels(k int) []string {
	out := make([]string, k)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}
