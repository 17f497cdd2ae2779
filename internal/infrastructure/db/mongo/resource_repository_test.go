package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
)

func param(t *testing.T, typeName, name string) domain.SearchParam {
	t.Helper()
	rt, ok := domain.LookupResourceType(typeName)
	if !ok {
		t.Fatalf("%s missing from registry", typeName)
	}
	p, ok := rt.Param(name)
	if !ok {
		t.Fatalf("%s has no %q param", typeName, name)
	}
	return p
}

func TestBuildFilter_Exact(t *testing.T) {
	got := BuildFilter([]ports.SearchFilter{
		{Param: param(t, "Observation", "code"), Value: "8867-4"},
		{Param: param(t, "Observation", "status"), Value: "final"},
	})

	want := bson.M{
		"code.coding.code": "8867-4",
		"status":           "final",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected filter: %#v", got)
	}
}

func TestBuildFilter_Contains(t *testing.T) {
	got := BuildFilter([]ports.SearchFilter{
		{Param: param(t, "Patient", "family"), Value: "smith"},
	})

	want := bson.M{
		"name.family": bson.M{"$regex": "smith", "$options": "i"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected filter: %#v", got)
	}
}

func TestBuildFilter_DateRange(t *testing.T) {
	got := BuildFilter([]ports.SearchFilter{
		{Param: param(t, "Observation", "date"), From: "2024-01-01", To: "2024-02-01"},
	})

	want := bson.M{
		"effectiveDateTime": bson.M{"$gte": "2024-01-01", "$lt": "2024-02-01T23:59:59.999Z"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected filter: %#v", got)
	}

	// A reading taken during the end day must fall inside the bound.
	lt := got["effectiveDateTime"].(bson.M)["$lt"].(string)
	if reading := "2024-02-01T08:00:00Z"; reading >= lt {
		t.Fatalf("end-day reading %s excluded by upper bound %s", reading, lt)
	}
}

func TestBuildFilter_DateExact(t *testing.T) {
	got := BuildFilter([]ports.SearchFilter{
		{Param: param(t, "Observation", "date"), Value: "2024-01-15"},
	})

	rng, ok := got["effectiveDateTime"].(bson.M)
	if !ok {
		t.Fatalf("expected range on effectiveDateTime, got %#v", got)
	}
	if rng["$gte"] != "2024-01-15" {
		t.Fatalf("unexpected lower bound: %v", rng["$gte"])
	}
}

func TestBuildFilter_Empty(t *testing.T) {
	if got := BuildFilter(nil); len(got) != 0 {
		t.Fatalf("expected empty filter, got %#v", got)
	}
}
