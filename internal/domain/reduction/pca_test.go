package reduction_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/internal/domain/reduction"
	. "github.com/smartystreets/goconvey/convey"
)

const tol = 1e-9

func matrixOf(rows map[string][]model.Vote, order ...string) *preference.Matrix {
	participants := make([]model.Participant, 0, len(order))
	var width int
	for _, id := range order {
		participants = append(participants, model.Participant{ID: id, Votes: rows[id]})
		width = len(rows[id])
	}
	projects := make([]string, width)
	for i := range projects {
		projects[i] = string(rune('a' + i))
	}
	m, err := preference.New(projects, participants)
	if err != nil {
		panic(err)
	}
	return m
}

func twoClusters() map[string][]model.Vote {
	a := []model.Vote{model.Approve, model.Approve, model.Reject}
	b := []model.Vote{model.Reject, model.Reject, model.Approve}
	return map[string][]model.Vote{"a1": a, "a2": a, "a3": a, "b1": b, "b2": b, "b3": b}
}

func byID(r *reduction.Reduction) map[string]model.Projection {
	out := make(map[string]model.Projection, len(r.Projections))
	for _, p := range r.Projections {
		out[p.ParticipantID] = p
	}
	return out
}

func TestPCA(t *testing.T) {
	Convey("Given a PCA reducer", t, func() {
		ctx := context.Background()
		pca := reduction.NewPCA()

		Convey("When reducing two opposed opinion clusters", func() {
			m := matrixOf(twoClusters(), "a1", "b1", "a2", "b2", "a3", "b3")
			r, err := pca.Reduce(ctx, m)
			So(err, ShouldBeNil)
			got := byID(r)

			Convey("Then identical voters should share a point", func() {
				So(got["a1"], ShouldResemble, model.Projection{ParticipantID: "a1", PC1: got["a2"].PC1, PC2: got["a2"].PC2, Angle: got["a2"].Angle, Radius: got["a2"].Radius})
				So(got["b1"].Angle, ShouldEqual, got["b3"].Angle)
			})

			Convey("And the clusters should sit on opposite rays", func() {
				So(got["a1"].Angle, ShouldAlmostEqual, 0, tol)
				So(got["b1"].Angle, ShouldAlmostEqual, math.Pi, tol)
				So(got["a1"].Radius, ShouldAlmostEqual, got["b1"].Radius, tol)
				So(got["a1"].PC2, ShouldEqual, 0.0)
			})

			Convey("And projections should follow matrix row order", func() {
				So(r.Projections[0].ParticipantID, ShouldEqual, "a1")
				So(r.Projections[5].ParticipantID, ShouldEqual, "b3")
			})

			Convey("And the first component should explain all variance", func() {
				So(r.ExplainedVariance[0], ShouldAlmostEqual, 1, 1e-6)
				So(r.ExplainedVariance[1], ShouldAlmostEqual, 0, 1e-6)
			})
		})

		Convey("When reducing the same voters in a different row order", func() {
			rows := map[string][]model.Vote{
				"p1": {model.Approve, model.Reject, model.Abstain, model.Approve},
				"p2": {model.Reject, model.Reject, model.Approve, model.Approve},
				"p3": {model.Approve, model.Approve, model.Approve, model.Reject},
				"p4": {model.Abstain, model.Reject, model.Reject, model.Reject},
				"p5": {model.Reject, model.Approve, model.Abstain, model.Approve},
			}
			first, err := pca.Reduce(ctx, matrixOf(rows, "p1", "p2", "p3", "p4", "p5"))
			So(err, ShouldBeNil)
			second, err := pca.Reduce(ctx, matrixOf(rows, "p5", "p4", "p3", "p2", "p1"))
			So(err, ShouldBeNil)

			Convey("Then every participant should land on the same point", func() {
				a, b := byID(first), byID(second)
				for id := range rows {
					So(a[id].Angle, ShouldAlmostEqual, b[id].Angle, tol)
					So(a[id].Radius, ShouldAlmostEqual, b[id].Radius, tol)
				}
			})

			Convey("And the explained variance should be ordered", func() {
				So(first.ExplainedVariance[0], ShouldBeGreaterThanOrEqualTo, first.ExplainedVariance[1])
				So(first.ExplainedVariance[0]+first.ExplainedVariance[1], ShouldBeLessThanOrEqualTo, 1+tol)
			})
		})

		Convey("When reducing twice", func() {
			m := matrixOf(twoClusters(), "a1", "a2", "a3", "b1", "b2", "b3")
			first, _ := pca.Reduce(ctx, m)
			second, _ := pca.Reduce(ctx, m)

			Convey("Then the results should be identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When every participant voted identically", func() {
			same := []model.Vote{model.Approve, model.Reject, model.Abstain}
			m := matrixOf(map[string][]model.Vote{"x": same, "y": same, "z": same}, "x", "y", "z")
			_, err := pca.Reduce(ctx, m)

			Convey("Then it should report degenerate input", func() {
				So(errors.Is(err, grouperr.ErrDegenerateInput), ShouldBeTrue)
				var degenerate *grouperr.DegenerateInputError
				So(errors.As(err, &degenerate), ShouldBeTrue)
				So(degenerate.Participants, ShouldEqual, 3)
			})
		})

		Convey("When the matrix is too small", func() {
			m := matrixOf(map[string][]model.Vote{"x": {model.Approve}, "y": {model.Reject}}, "x", "y")
			_, err := pca.Reduce(ctx, m)

			Convey("Then it should be an invalid input error", func() {
				So(errors.Is(err, grouperr.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When standardizing columns", func() {
			std := reduction.NewPCA(reduction.WithStandardize(true), reduction.WithAbstainValue(0))
			r, err := std.Reduce(ctx, matrixOf(twoClusters(), "a1", "a2", "a3", "b1", "b2", "b3"))

			Convey("Then the clusters should still be opposed", func() {
				So(err, ShouldBeNil)
				got := byID(r)
				So(math.Abs(got["a1"].Angle-got["b1"].Angle), ShouldAlmostEqual, math.Pi, tol)
			})
		})
	})
}

func TestPolar(t *testing.T) {
	Convey("Given plane coordinates", t, func() {
		Convey("When the point lies below the axis", func() {
			p := reduction.Polar("p", 0, -2)

			Convey("Then the angle should be normalized into [0, 2π)", func() {
				So(p.Angle, ShouldAlmostEqual, 3*math.Pi/2, tol)
				So(p.Radius, ShouldAlmostEqual, 2, tol)
			})
		})

		Convey("When coordinates are numerical noise", func() {
			p := reduction.Polar("p", 1e-15, -1e-15)

			Convey("Then they should snap to the origin", func() {
				So(p.PC1, ShouldEqual, 0.0)
				So(p.PC2, ShouldEqual, 0.0)
				So(p.Angle, ShouldEqual, 0.0)
				So(p.Radius, ShouldEqual, 0.0)
			})
		})

		Convey("When a Func reducer is used", func() {
			fixed := reduction.Func(func(context.Context, *preference.Matrix) (*reduction.Reduction, error) {
				return &reduction.Reduction{Projections: []model.Projection{reduction.Polar("only", 1, 1)}}, nil
			})
			r, err := fixed.Reduce(context.Background(), nil)

			Convey("Then it should return the fixed projections", func() {
				So(err, ShouldBeNil)
				So(r.Projections[0].Angle, ShouldAlmostEqual, math.Pi/4, tol)
			})
		})
	})
}
