package reduction

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
)

const components = 2

// Option applies a configuration option to the PCA reducer.
type Option func(*PCA)

// WithAbstainValue sets the numeric encoding of abstentions.
func WithAbstainValue(v float64) Option {
	return func(p *PCA) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			p.abstain = v
		}
	}
}

// WithStandardize scales every project column to unit variance after
// centering. Constant columns stay at zero.
func WithStandardize(enabled bool) Option {
	return func(p *PCA) {
		p.standardize = enabled
	}
}

// PCA reduces a matrix to its top two principal components.
type PCA struct {
	abstain     float64
	standardize bool
}

// NewPCA creates a PCA reducer with configuration options.
func NewPCA(opts ...Option) *PCA {
	p := &PCA{abstain: preference.DefaultAbstainValue}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reduce centers every project column, finds the two directions of maximal
// variance and returns each participant's polar coordinates in that plane.
//
// Each direction is oriented so that its largest-magnitude loading is
// positive (lowest column wins ties), which makes repeated runs on identical
// input reproducible. A matrix with zero total variance is a
// DegenerateInputError.
func (p *PCA) Reduce(_ context.Context, m *preference.Matrix) (*Reduction, error) {
	rows, cols := m.Rows(), m.Cols()
	if rows < components || cols < components {
		return nil, grouperr.Invalid("matrix", "need at least %d participants and %d projects, got %dx%d", components, components, rows, cols)
	}

	data := m.Encode(p.abstain)
	if !p.center(data, rows, cols) {
		return nil, &grouperr.DegenerateInputError{Participants: rows, Projects: cols}
	}

	x := mat.NewDense(rows, cols, data)
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, &grouperr.DegenerateInputError{Participants: rows, Projects: cols}
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	axes := make([][]float64, components)
	for c := range axes {
		axes[c] = orient(mat.Col(nil, c, &vecs))
	}

	ids := m.IDs()
	out := &Reduction{}
	var total float64
	for _, v := range vars {
		total += v
	}
	for c := 0; c < components && c < len(vars); c++ {
		out.ExplainedVariance[c] = vars[c] / total
	}

	out.Projections = make([]model.Projection, rows)
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		out.Projections[i] = Polar(ids[i], dot(row, axes[0]), dot(row, axes[1]))
	}
	return out, nil
}

// center subtracts column means in place, optionally scaling to unit
// variance. It reports false when every column is constant.
func (p *PCA) center(data []float64, rows, cols int) bool {
	var varied bool
	for j := 0; j < cols; j++ {
		var mean float64
		for i := 0; i < rows; i++ {
			mean += data[i*cols+j]
		}
		mean /= float64(rows)

		var ss float64
		for i := 0; i < rows; i++ {
			d := data[i*cols+j] - mean
			data[i*cols+j] = d
			ss += d * d
		}
		if ss <= numericalZero {
			for i := 0; i < rows; i++ {
				data[i*cols+j] = 0
			}
			continue
		}
		varied = true
		if p.standardize {
			sd := math.Sqrt(ss / float64(rows))
			for i := 0; i < rows; i++ {
				data[i*cols+j] /= sd
			}
		}
	}
	return varied
}

// orient flips v so its largest-magnitude component is positive.
func orient(v []float64) []float64 {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best])+numericalZero {
			best = i
		}
	}
	if v[best] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
	return v
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
