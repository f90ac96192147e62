package preference_test

import (
	"errors"
	"testing"

	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	yes = model.Approve
	no  = model.Reject
	abs = model.Abstain
)

func TestNewMatrix(t *testing.T) {
	Convey("Given a project list", t, func() {
		projects := []string{"park", "library", "bikes"}

		Convey("When participants are well formed", func() {
			m, err := preference.New(projects, []model.Participant{
				{ID: "p1", Votes: []model.Vote{yes, no, abs}},
				{ID: "p2", Votes: []model.Vote{no, yes, yes}},
			})

			Convey("Then the matrix should expose its shape and ids", func() {
				So(err, ShouldBeNil)
				So(m.Rows(), ShouldEqual, 2)
				So(m.Cols(), ShouldEqual, 3)
				So(m.IDs(), ShouldResemble, []string{"p1", "p2"})
				So(m.Projects(), ShouldResemble, projects)
				So(m.Has("p2"), ShouldBeTrue)
				So(m.Has("p3"), ShouldBeFalse)
				So(m.Participant(1).Votes, ShouldResemble, []model.Vote{no, yes, yes})
			})

			Convey("And encoding should map abstentions to the given value", func() {
				So(m.Encode(preference.DefaultAbstainValue), ShouldResemble, []float64{1, 0, 0.5, 0, 1, 1})
				So(m.Encode(0), ShouldResemble, []float64{1, 0, 0, 0, 1, 1})
			})
		})

		Convey("When a row is ragged", func() {
			_, err := preference.New(projects, []model.Participant{{ID: "p1", Votes: []model.Vote{yes}}})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, grouperr.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When ids repeat", func() {
			row := []model.Vote{yes, yes, yes}
			_, err := preference.New(projects, []model.Participant{{ID: "p1", Votes: row}, {ID: "p1", Votes: row}})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, grouperr.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "duplicate id")
			})
		})

		Convey("When an id is blank", func() {
			_, err := preference.New(projects, []model.Participant{{ID: " ", Votes: []model.Vote{yes, yes, yes}}})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, grouperr.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When projects repeat or are missing", func() {
			_, dupErr := preference.New([]string{"a", "a"}, nil)
			_, emptyErr := preference.New(nil, nil)

			Convey("Then both should be rejected", func() {
				So(errors.Is(dupErr, grouperr.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(emptyErr, grouperr.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestSubset(t *testing.T) {
	Convey("Given a matrix of four participants", t, func() {
		m, err := preference.New([]string{"a", "b"}, []model.Participant{
			{ID: "p1", Votes: []model.Vote{yes, no}},
			{ID: "p2", Votes: []model.Vote{no, yes}},
			{ID: "p3", Votes: []model.Vote{yes, yes}},
			{ID: "p4", Votes: []model.Vote{no, no}},
		})
		So(err, ShouldBeNil)

		Convey("When subsetting to attendees out of order", func() {
			sub, err := m.Subset([]string{"p4", "p1"})

			Convey("Then rows should keep the matrix order", func() {
				So(err, ShouldBeNil)
				So(sub.IDs(), ShouldResemble, []string{"p1", "p4"})
				So(sub.Cols(), ShouldEqual, 2)
			})
		})

		Convey("When subsetting with an unknown id", func() {
			_, err := m.Subset([]string{"p1", "ghost"})

			Convey("Then it should be an invalid input error", func() {
				So(errors.Is(err, grouperr.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "ghost")
			})
		})
	})
}
