package domain

import "strings"

// Resource is a schemaless FHIR document. The server treats the body as
// opaque JSON apart from the logical "id" field.
type Resource map[string]any

// ID returns the logical FHIR id of the resource, or "" when unset.
func (r Resource) ID() string {
	id, _ := r["id"].(string)
	return id
}

// SearchKind selects how a search parameter is matched against the store.
type SearchKind int

const (
	// MatchExact compares the stored field for equality.
	MatchExact SearchKind = iota
	// MatchContains performs a case-insensitive substring match.
	MatchContains
	// MatchDate compares the stored field against a date or date range.
	// Range bounds arrive as the "<name>_from" and "<name>_to" parameters.
	MatchDate
)

// SearchParam declares one query parameter a resource type supports and the
// document field it targets.
type SearchParam struct {
	Name  string
	Field string
	Kind  SearchKind
	// Aliases are alternative query parameter names accepted for this field
	// (FHIR exposes e.g. both "patient" and "subject" for the subject ref).
	Aliases []string
}

// ResourceType describes one FHIR resource collection: its canonical name,
// the search parameters it honours, and the field it can be sorted on.
type ResourceType struct {
	Name      string
	Params    []SearchParam
	SortField string
}

// Param looks up a search parameter by name or alias.
func (rt ResourceType) Param(name string) (SearchParam, bool) {
	for _, p := range rt.Params {
		if p.Name == name {
			return p, true
		}
		for _, a := range p.Aliases {
			if a == name {
				return p, true
			}
		}
	}
	return SearchParam{}, false
}

// ResourceTypes is the registry of every resource collection the API serves.
// Patient and Observation carry real filters; the remaining types support
// by-id access and paginated listing only.
var ResourceTypes = []ResourceType{
	{
		Name: "Patient",
		Params: []SearchParam{
			{Name: "family", Field: "name.family", Kind: MatchContains, Aliases: []string{"name"}},
			{Name: "given", Field: "name.given", Kind: MatchContains},
			{Name: "identifier", Field: "identifier.value", Kind: MatchExact},
			{Name: "birthdate", Field: "birthDate", Kind: MatchExact},
			{Name: "gender", Field: "gender", Kind: MatchExact},
		},
	},
	{
		Name: "Observation",
		Params: []SearchParam{
			{Name: "subject", Field: "subject.reference", Kind: MatchExact, Aliases: []string{"patient"}},
			{Name: "code", Field: "code.coding.code", Kind: MatchExact},
			{Name: "category", Field: "category.coding.code", Kind: MatchExact},
			{Name: "status", Field: "status", Kind: MatchExact},
			{Name: "device", Field: "device.reference", Kind: MatchExact},
			{Name: "date", Field: "effectiveDateTime", Kind: MatchDate},
		},
		SortField: "effectiveDateTime",
	},
	{Name: "Practitioner"},
	{Name: "Organization"},
	{Name: "Device"},
	{Name: "Location"},
	{Name: "DiagnosticReport"},
	{Name: "Specimen"},
	{Name: "Encounter"},
	{Name: "Condition"},
	{Name: "Appointment"},
	{Name: "ServiceRequest"},
	{Name: "Task"},
	{Name: "Medication"},
	{Name: "MedicationRequest"},
	{Name: "CareTeam"},
	{Name: "Communication"},
	{Name: "Procedure"},
	{Name: "FamilyMemberHistory"},
	{Name: "Immunization"},
	{Name: "AllergyIntolerance"},
	{Name: "DocumentReference"},
}

// LookupResourceType resolves a resource type by its canonical name.
func LookupResourceType(name string) (ResourceType, bool) {
	for _, rt := range ResourceTypes {
		if rt.Name == name {
			return rt, true
		}
	}
	return ResourceType{}, false
}

// IDPrefix returns the prefix used when the server assigns an id to a new
// resource of this type, e.g. "patient-" for Patient.
func (rt ResourceType) IDPrefix() string {
	return strings.ToLower(rt.Name) + "-"
}
