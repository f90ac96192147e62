// Package reduction projects preference vectors into a 2D opinion space.
//
// The Reducer interface is the seam between the grouping pipeline and the
// numeric library doing the decomposition; tests substitute fixed
// projections through Func.
package reduction

import (
	"context"
	"math"

	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
)

// numericalZero is the magnitude below which a coordinate is treated as 0.
const numericalZero = 1e-12

// Reduction is the outcome of projecting a matrix.
type Reduction struct {
	// Projections are in matrix row order.
	Projections []model.Projection
	// ExplainedVariance holds the variance ratio of PC1 and PC2.
	ExplainedVariance [2]float64
}

// Reducer maps every matrix row to a point in the opinion plane.
type Reducer interface {
	Reduce(ctx context.Context, m *preference.Matrix) (*Reduction, error)
}

// Func adapts a function to the Reducer interface.
type Func func(ctx context.Context, m *preference.Matrix) (*Reduction, error)

// Reduce calls f.
func (f Func) Reduce(ctx context.Context, m *preference.Matrix) (*Reduction, error) {
	return f(ctx, m)
}

// Polar builds a projection from plane coordinates. The angle is
// atan2(pc2, pc1) normalized to [0, 2π).
func Polar(id string, pc1, pc2 float64) model.Projection {
	pc1, pc2 = snap(pc1), snap(pc2)
	angle := math.Atan2(pc2, pc1)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle >= 2*math.Pi {
		angle = 0
	}
	return model.Projection{
		ParticipantID: id,
		PC1:           pc1,
		PC2:           pc2,
		Angle:         angle,
		Radius:        math.Hypot(pc1, pc2),
	}
}

func snap(v float64) float64 {
	if math.Abs(v) < numericalZero {
		return 0
	}
	return v
}
