package quality_test

import (
	"testing"

	"github.com/okian/triage/internal/domain/quality"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a new registry", t, func() {
		r := quality.NewRegistry()

		Convey("Then it should start empty", func() {
			So(r.Size(), ShouldEqual, 0)
			So(r.IDs(), ShouldBeEmpty)
			So(r.Has("P1"), ShouldBeFalse)
		})

		Convey("When identifiers are added", func() {
			r.Add("P3")
			r.Add("P1")
			r.Add("P2")

			Convey("Then they are kept in first-seen order", func() {
				So(r.IDs(), ShouldResemble, []string{"P3", "P1", "P2"})
				So(r.Size(), ShouldEqual, 3)
			})

			Convey("And membership checks succeed", func() {
				So(r.Has("P1"), ShouldBeTrue)
				So(r.Has("P9"), ShouldBeFalse)
			})
		})

		Convey("When the same identifier is added repeatedly", func() {
			r.Add("P1")
			r.Add("P1")
			r.Add("P1")

			Convey("Then it appears exactly once", func() {
				So(r.Size(), ShouldEqual, 1)
				So(r.IDs(), ShouldResemble, []string{"P1"})
			})
		})

		Convey("When the returned slice is mutated", func() {
			r.Add("P1")
			ids := r.IDs()
			ids[0] = "mutated"

			Convey("Then the registry is unaffected", func() {
				So(r.IDs(), ShouldResemble, []string{"P1"})
			})
		})
	})
}
