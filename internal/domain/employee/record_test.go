package employee_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/smartystreets/goconvey/convey"
)

func TestSchema(t *testing.T) {
	convey.Convey("Given the attrition schema", t, func() {
		convey.Convey("Then it should have 21 uniquely named fields", func() {
			convey.So(len(employee.Fields), convey.ShouldEqual, employee.FieldCount)
			names := map[string]bool{}
			keys := map[string]bool{}
			for _, f := range employee.Fields {
				names[f.Name] = true
				keys[f.Key] = true
			}
			convey.So(len(names), convey.ShouldEqual, employee.FieldCount)
			convey.So(len(keys), convey.ShouldEqual, employee.FieldCount)
		})

		convey.Convey("Then the first and last columns should be Age and Company Reputation", func() {
			names := employee.Fields.Names()
			convey.So(names[0], convey.ShouldEqual, "Age")
			convey.So(names[20], convey.ShouldEqual, "Company Reputation")
		})

		convey.Convey("Then every default should lie inside its domain", func() {
			for _, f := range employee.Fields {
				convey.So(f.Contains(f.Default), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then education levels should use typographic apostrophes", func() {
			f, ok := employee.Fields.Lookup("Education Level")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(f.Choices, convey.ShouldContain, "Bachelor’s Degree")
			convey.So(f.Choices, convey.ShouldContain, "Master’s Degree")
			convey.So(f.Choices, convey.ShouldNotContain, "Bachelor's Degree")
		})

		convey.Convey("When checking domains", func() {
			income, _ := employee.Fields.LookupKey("monthly_income")
			age, _ := employee.Fields.LookupKey("age")
			gender, _ := employee.Fields.LookupKey("gender")

			convey.So(income.Contains(7300), convey.ShouldBeTrue)
			convey.So(income.Contains(7350), convey.ShouldBeFalse)
			convey.So(income.Contains(900), convey.ShouldBeFalse)
			convey.So(age.Contains(18), convey.ShouldBeTrue)
			convey.So(age.Contains(61), convey.ShouldBeFalse)
			convey.So(age.Contains("18"), convey.ShouldBeFalse)
			convey.So(gender.Contains("Female"), convey.ShouldBeTrue)
			convey.So(gender.Contains("female"), convey.ShouldBeFalse)
		})
	})
}

func TestRecord(t *testing.T) {
	convey.Convey("Given a default record", t, func() {
		r := employee.DefaultRecord()

		convey.Convey("Then it should match the schema shape", func() {
			convey.So(r.Len(), convey.ShouldEqual, employee.FieldCount)
			convey.So(r.Names(), convey.ShouldResemble, employee.Fields.Names())
			convey.So(employee.Fields.CheckShape(r), convey.ShouldBeNil)
		})

		convey.Convey("When overwriting a value", func() {
			r.Set("Age", 45)

			convey.Convey("Then its position should be kept", func() {
				v, ok := r.Get("Age")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 45)
				convey.So(r.Names()[0], convey.ShouldEqual, "Age")
				convey.So(employee.Fields.CheckShape(r), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a field is missing", func() {
			r.Delete("Overtime")
			err := employee.Fields.CheckShape(r)

			convey.Convey("Then the shape check should fail with a missing field error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, employee.ErrSchemaMismatch), convey.ShouldBeTrue)
				convey.So(errors.Is(err, employee.ErrMissingField), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Overtime")
			})
		})

		convey.Convey("When an extra field is present", func() {
			r.Set("Salary Band", "B")
			err := employee.Fields.CheckShape(r)

			convey.Convey("Then the shape check should fail with an unknown field error", func() {
				convey.So(errors.Is(err, employee.ErrUnknownField), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When fields are out of order", func() {
			age, _ := r.Get("Age")
			r.Delete("Age")
			r.Set("Age", age)
			err := employee.Fields.CheckShape(r)

			convey.Convey("Then the shape check should fail with an order error", func() {
				convey.So(errors.Is(err, employee.ErrFieldOrder), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value has the wrong kind", func() {
			r.Set("Age", "38")
			err := employee.Fields.CheckShape(r)

			convey.Convey("Then the shape check should fail with a type error", func() {
				convey.So(errors.Is(err, employee.ErrFieldType), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a nil record", t, func() {
		convey.So(errors.Is(employee.Fields.CheckShape(nil), employee.ErrSchemaMismatch), convey.ShouldBeTrue)
	})
}

func TestFieldJSON(t *testing.T) {
	convey.Convey("Given an integer field with a zero minimum", t, func() {
		f, ok := employee.Fields.LookupKey("number_of_promotions")
		convey.So(ok, convey.ShouldBeTrue)

		convey.Convey("When it is marshaled", func() {
			data, err := json.Marshal(f)
			convey.So(err, convey.ShouldBeNil)
			var out map[string]any
			convey.So(json.Unmarshal(data, &out), convey.ShouldBeNil)

			convey.Convey("Then every bound should be present", func() {
				convey.So(out["min"], convey.ShouldEqual, float64(0))
				convey.So(out["max"], convey.ShouldEqual, float64(10))
				convey.So(out["step"], convey.ShouldEqual, float64(1))
				convey.So(out, convey.ShouldNotContainKey, "choices")
			})

			convey.Convey("And it should decode back to the same field", func() {
				var back employee.Field
				convey.So(json.Unmarshal(data, &back), convey.ShouldBeNil)
				convey.So(back.Min, convey.ShouldEqual, 0)
				convey.So(back.Max, convey.ShouldEqual, 10)
				convey.So(back.Kind, convey.ShouldEqual, employee.KindInteger)
			})
		})
	})

	convey.Convey("Given a category field", t, func() {
		f, _ := employee.Fields.LookupKey("gender")

		convey.Convey("When it is marshaled", func() {
			data, err := json.Marshal(f)
			convey.So(err, convey.ShouldBeNil)
			var out map[string]any
			convey.So(json.Unmarshal(data, &out), convey.ShouldBeNil)

			convey.Convey("Then it should carry choices and no integer bounds", func() {
				convey.So(out, convey.ShouldNotContainKey, "min")
				convey.So(out, convey.ShouldNotContainKey, "step")
				convey.So(out["choices"], convey.ShouldResemble, []any{"Male", "Female"})
			})
		})
	})
}
