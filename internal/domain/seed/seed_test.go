package seed_test

import (
	"testing"

	"github.com/okian/radial/internal/domain/seed"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStreams(t *testing.T) {
	Convey("Given seeded streams", t, func() {
		Convey("When two generators share a seed", func() {
			a, b := seed.New(42), seed.New(42)

			Convey("Then they should produce the same sequence", func() {
				for i := 0; i < 16; i++ {
					So(a.Int63(), ShouldEqual, b.Int63())
				}
			})
		})

		Convey("When seed zero is used", func() {
			Convey("Then it should behave like the default seed", func() {
				So(seed.New(0).Int63(), ShouldEqual, seed.New(1).Int63())
				So(seed.Or(nil).Int63(), ShouldEqual, seed.New(1).Int63())
			})
		})

		Convey("When deriving streams", func() {
			Convey("Then the same seed and stream should agree", func() {
				So(seed.Derive(7, seed.StreamSectorPhase).Int63(), ShouldEqual, seed.Derive(7, seed.StreamSectorPhase).Int63())
			})

			Convey("And different streams should diverge", func() {
				So(seed.Mix(7, seed.StreamSectorPhase), ShouldNotEqual, seed.Mix(7, seed.StreamRedistribute))
			})
		})
	})
}
