// Package radial divides the opinion plane into equal-population angular
// sectors ("pizza slices").
//
// Participants are walked in angular order and cut into K contiguous runs
// whose sizes differ by at most one. Where the cuts fall is chosen so that
// they land in the widest angular gaps, which keeps tight opinion clusters
// inside a single sector.
package radial

import (
	"math"
	"math/cmplx"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/seed"
)

const (
	fullTurn = 2 * math.Pi
	scoreEps = 1e-12
	fftEps   = 1e-9

	// directLimit bounds n*k for the exact rotation scan.
	directLimit = 1 << 16
)

// Partitioner splits projections into balanced angular sectors.
type Partitioner struct{}

// New creates a Partitioner.
func New() *Partitioner { return &Partitioner{} }

// Partition returns k sectors in canonical angular order. Sector 0 holds the
// participant with the smallest angle; the rest follow counter-clockwise.
//
// Every sector holds floor(n/k) or ceil(n/k) participants and exactly n mod k
// sectors hold the larger count, spread evenly around the circle. The phase
// of that spread is drawn from rng; a nil rng uses the default stream.
func (p *Partitioner) Partition(projections []model.Projection, k int, rng *rand.Rand) ([]model.Sector, error) {
	n := len(projections)
	if k < 1 {
		return nil, grouperr.Invalid("k", "sector count must be positive, got %d", k)
	}
	if n == 0 {
		return nil, grouperr.Invalid("projections", "nothing to partition")
	}
	if k > n {
		return nil, &grouperr.InfeasibleGroupingError{Requested: k, MaxFeasible: n, Attending: n, MinSize: 1}
	}
	if err := validate(projections); err != nil {
		return nil, err
	}

	order := Sort(projections)
	sizes := Quotas(n, k, seed.Or(rng).Intn(k))
	starts := make([]int, k)
	for j := 1; j < k; j++ {
		starts[j] = starts[j-1] + sizes[j-1]
	}

	shift := bestShift(gaps(order), starts)

	sectors := make([]model.Sector, k)
	first := 0
	for j := 0; j < k; j++ {
		members := make([]string, sizes[j])
		for t := range members {
			pos := (shift + starts[j] + t) % n
			if pos == 0 {
				first = j
			}
			members[t] = order[pos].ParticipantID
		}
		sectors[j] = model.Sector{Members: members}
	}

	// Rotate so the sector holding the smallest angle comes first.
	canonical := make([]model.Sector, k)
	for c := 0; c < k; c++ {
		canonical[c] = sectors[(first+c)%k]
		canonical[c].Index = c
	}

	angle := make(map[string]float64, n)
	for _, pr := range order {
		angle[pr.ParticipantID] = pr.Angle
	}
	for c := 0; c < k; c++ {
		cur := canonical[c].Members
		next := canonical[(c+1)%k].Members
		end := midpoint(angle[cur[len(cur)-1]], angle[next[0]])
		canonical[c].End = end
		canonical[(c+1)%k].Start = end
	}
	return canonical, nil
}

// Sort returns a copy of projections ordered by angle ascending, then radius
// descending, then participant id ascending.
func Sort(projections []model.Projection) []model.Projection {
	order := append([]model.Projection(nil), projections...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.Angle != b.Angle {
			return a.Angle < b.Angle
		}
		if a.Radius != b.Radius {
			return a.Radius > b.Radius
		}
		return a.ParticipantID < b.ParticipantID
	})
	return order
}

// Quotas returns k sector sizes summing to n. The n mod k larger sectors are
// placed with a Bresenham spread starting at phase.
func Quotas(n, k, phase int) []int {
	base, extra := n/k, n%k
	sizes := make([]int, k)
	for i := range sizes {
		j := (i + phase) % k
		sizes[i] = base + (j+1)*extra/k - j*extra/k
	}
	return sizes
}

// gaps[i] is the angular distance from order[i-1] to order[i], wrapping so
// gaps[0] closes the circle.
func gaps(order []model.Projection) []float64 {
	n := len(order)
	g := make([]float64, n)
	g[0] = order[0].Angle + fullTurn - order[n-1].Angle
	for i := 1; i < n; i++ {
		g[i] = order[i].Angle - order[i-1].Angle
	}
	return g
}

// bestShift picks the rotation whose cut positions cover the largest total
// gap. Ties keep the lowest rotation.
//
// Small inputs score each rotation directly in O(n*k). Larger ones score all
// rotations at once as a circular cross-correlation, O(n log n).
func bestShift(g []float64, starts []int) int {
	if len(g)*len(starts) <= directLimit {
		return pick(directScores(g, starts), scoreEps)
	}
	return pick(correlate(g, starts), fftEps)
}

func directScores(g []float64, starts []int) []float64 {
	n := len(g)
	scores := make([]float64, n)
	for s := 0; s < n; s++ {
		for _, st := range starts {
			scores[s] += g[(s+st)%n]
		}
	}
	return scores
}

// correlate returns scores[s] = sum of g[(s+st)%n] over starts.
func correlate(g []float64, starts []int) []float64 {
	n := len(g)
	mask := make([]float64, n)
	for _, st := range starts {
		mask[st] = 1
	}
	fft := fourier.NewFFT(n)
	gc := fft.Coefficients(nil, g)
	mc := fft.Coefficients(nil, mask)
	for i := range gc {
		gc[i] *= cmplx.Conj(mc[i])
	}
	scores := fft.Sequence(nil, gc)

	// Summed over all rotations every gap is counted once per cut, which
	// fixes the scale whatever normalization the transform uses.
	var total, raw float64
	for i := range g {
		total += g[i]
		raw += scores[i]
	}
	if raw == 0 {
		return scores
	}
	scale := float64(len(starts)) * total / raw
	for i := range scores {
		scores[i] *= scale
	}
	return scores
}

// pick returns the lowest index whose score beats every earlier one by more
// than eps.
func pick(scores []float64, eps float64) int {
	best, bestScore := 0, math.Inf(-1)
	for s, score := range scores {
		if score > bestScore+eps {
			best, bestScore = s, score
		}
	}
	return best
}

// midpoint bisects the counter-clockwise arc from a to b.
func midpoint(a, b float64) float64 {
	if b < a {
		b += fullTurn
	}
	m := (a + b) / 2
	if m >= fullTurn {
		m -= fullTurn
	}
	return m
}

func validate(projections []model.Projection) error {
	seen := make(map[string]struct{}, len(projections))
	for _, p := range projections {
		if _, dup := seen[p.ParticipantID]; dup {
			return grouperr.Invalid("projections", "duplicate participant %q", p.ParticipantID)
		}
		seen[p.ParticipantID] = struct{}{}
		if math.IsNaN(p.Angle) || p.Angle < 0 || p.Angle >= fullTurn {
			return grouperr.Invalid("projections", "angle of %q out of [0, 2π): %v", p.ParticipantID, p.Angle)
		}
		if math.IsNaN(p.Radius) || p.Radius < 0 {
			return grouperr.Invalid("projections", "radius of %q is negative or NaN", p.ParticipantID)
		}
	}
	return nil
}
