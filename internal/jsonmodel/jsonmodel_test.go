package jsonmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirtools/fhirtools/model"
)

const samplePatient = `{
	"resourceType": "Patient",
	"id": "example",
	"active": true,
	"meta": {"profile": ["http://example.org/fhir/StructureDefinition/my-patient"]},
	"name": [
		{"use": "official", "family": "Chalmers", "given": ["Peter", "James"]},
		{"use": "usual", "given": ["Jim"]}
	],
	"birthDate": "1974-12-25",
	"_birthDate": {"extension": [{"url": "http://example.org/fhir/StructureDefinition/birthTime", "valueDateTime": "1974-12-25T14:35:45-05:00"}]},
	"contained": [
		{"resourceType": "Organization", "id": "org1", "name": "Acme"}
	]
}`

func mustParse(t *testing.T) *Element {
	t.Helper()
	root, err := Parse([]byte(samplePatient))
	require.NoError(t, err)
	return root
}

func TestParseResourceIdentity(t *testing.T) {
	root := mustParse(t)
	assert.True(t, root.IsResource())
	assert.Equal(t, "Patient", root.ResourceType())
	assert.Equal(t, []string{"http://example.org/fhir/StructureDefinition/my-patient"}, root.Profiles())
}

func TestParseRepeatingElements(t *testing.T) {
	root := mustParse(t)
	names := root.SubElements("name")
	require.Len(t, names, 2)
	given := names[0].SubElements("given")
	require.Len(t, given, 2)
	s, err := given[0].AsString()
	require.NoError(t, err)
	assert.Equal(t, "Peter", s)
}

func TestParsePrimitiveExtensionCompanion(t *testing.T) {
	root := mustParse(t)
	birthDate := root.SubElements("birthDate")
	require.Len(t, birthDate, 1)
	s, err := birthDate[0].AsString()
	require.NoError(t, err)
	assert.Equal(t, "1974-12-25", s)
	assert.True(t, birthDate[0].HasSubElement("extension"), "a primitive's \"_field\" companion becomes its extension sub-element")
}

func TestParseDateConversion(t *testing.T) {
	root := mustParse(t)
	birthDate := root.SubElements("birthDate")[0]
	ts, err := birthDate.AsDate()
	require.NoError(t, err)
	assert.Equal(t, "1974-12-25", ts.String())
}

func TestParseContainedResource(t *testing.T) {
	root := mustParse(t)
	contained := root.SubElements("contained")
	require.Len(t, contained, 1)
	assert.True(t, contained[0].IsResource())
	assert.Equal(t, "Organization", contained[0].ResourceType())
	assert.Equal(t, root, contained[0].Parent())
}

func TestParentAncestry(t *testing.T) {
	root := mustParse(t)
	given := root.SubElements("name")[0].SubElements("given")[0]
	assert.Equal(t, model.Element(root), given.Parent().Parent())
}

func TestEqualsAgainstLiteral(t *testing.T) {
	root := mustParse(t)
	active := root.SubElements("active")
	require.Len(t, active, 1)
	assert.Equal(t, model.True, active[0].Equals(model.NewBooleanLiteral(true)))
}

func TestCompareToAgainstLiteralDate(t *testing.T) {
	root := mustParse(t)
	birthDate := root.SubElements("birthDate")[0]
	earlier, err := model.ParseTimestamp("1970-01-01")
	require.NoError(t, err)
	ord, err := birthDate.CompareTo(model.NewDateLiteral(earlier))
	require.NoError(t, err)
	assert.Equal(t, model.Greater, ord)
}
