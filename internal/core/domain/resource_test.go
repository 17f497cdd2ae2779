package domain

import "testing"

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Fatalf("role %s should be valid", r)
		}
	}
	for _, r := range []Role{"", "patient", "superuser", "Admin"} {
		if r.Valid() {
			t.Fatalf("role %q should be invalid", r)
		}
	}
}

func TestLookupResourceType(t *testing.T) {
	rt, ok := LookupResourceType("Observation")
	if !ok {
		t.Fatalf("Observation missing from registry")
	}
	if rt.SortField != "effectiveDateTime" {
		t.Fatalf("unexpected sort field: %s", rt.SortField)
	}

	if _, ok := LookupResourceType("Spaceship"); ok {
		t.Fatalf("unexpected registry hit for Spaceship")
	}
}

func TestResourceType_ParamAliases(t *testing.T) {
	rt, _ := LookupResourceType("Observation")

	direct, ok := rt.Param("subject")
	if !ok {
		t.Fatalf("subject param missing")
	}
	alias, ok := rt.Param("patient")
	if !ok {
		t.Fatalf("patient alias missing")
	}
	if direct.Field != alias.Field {
		t.Fatalf("alias resolves to a different field: %s vs %s", direct.Field, alias.Field)
	}

	if _, ok := rt.Param("nope"); ok {
		t.Fatalf("unexpected param hit")
	}
}

func TestResourceType_IDPrefix(t *testing.T) {
	rt, _ := LookupResourceType("DiagnosticReport")
	if rt.IDPrefix() != "diagnosticreport-" {
		t.Fatalf("unexpected prefix: %s", rt.IDPrefix())
	}
}
