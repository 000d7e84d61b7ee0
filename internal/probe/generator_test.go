package probe

import (
	"testing"

	"github.com/okian/attrition/internal/domain/employee"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := NewGenerator(employee.Fields, 42)

		Convey("When drawing many random records", func() {
			Convey("Then every value should lie inside its field's domain", func() {
				for i := 0; i < 500; i++ {
					rec := g.Random()
					So(rec, ShouldHaveLength, employee.FieldCount)
					for _, f := range employee.Fields {
						So(f.Contains(rec[f.Key]), ShouldBeTrue)
					}
				}
			})
		})

		Convey("When building the boundary record", func() {
			rec := g.Boundary()

			Convey("Then integers should be at their minimum and categories at their first choice", func() {
				So(rec["age"], ShouldEqual, 18)
				So(rec["monthly_income"], ShouldEqual, 1000)
				So(rec["company_tenure"], ShouldEqual, 0)
				So(rec["gender"], ShouldEqual, "Male")
				So(rec["education_level"], ShouldEqual, "High School")
				So(rec["company_reputation"], ShouldEqual, "Poor")
			})
		})

		Convey("When two generators share a seed", func() {
			other := NewGenerator(employee.Fields, 42)

			Convey("Then they should produce the same records", func() {
				for i := 0; i < 20; i++ {
					So(g.Random(), ShouldResemble, other.Random())
				}
			})
		})

		Convey("When asking for samples", func() {
			samples := g.Samples(5)

			Convey("Then the first should be the boundary record and ids unique", func() {
				So(samples, ShouldHaveLength, 5)
				So(samples[0].Input, ShouldResemble, g.Boundary())
				ids := map[string]bool{}
				for _, s := range samples {
					So(s.ID, ShouldNotBeEmpty)
					ids[s.ID] = true
				}
				So(ids, ShouldHaveLength, 5)
			})
		})

		Convey("When asking for no samples", func() {
			So(g.Samples(0), ShouldBeNil)
		})
	})
}
