package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirtools/fhirtools/internal/jsonmodel"
)

func TestResolveContainedReference(t *testing.T) {
	root, err := jsonmodel.Parse([]byte(`{
		"resourceType": "Patient",
		"id": "example",
		"contained": [{"resourceType": "Organization", "id": "org1", "name": "Acme"}],
		"managingOrganization": {"reference": "#org1"}
	}`))
	require.NoError(t, err)

	managingOrg := root.SubElements("managingOrganization")[0]
	r := New()
	target, err := r.Resolve(nil, managingOrg)
	require.NoError(t, err)
	assert.Equal(t, "Organization", target.ResourceType())
}

func TestResolveBundleFullURL(t *testing.T) {
	root, err := jsonmodel.Parse([]byte(`{
		"resourceType": "Bundle",
		"type": "collection",
		"entry": [
			{"fullUrl": "urn:uuid:abc", "resource": {"resourceType": "Patient", "id": "p1"}},
			{"fullUrl": "urn:uuid:xyz", "resource": {
				"resourceType": "Observation", "id": "o1",
				"subject": {"reference": "urn:uuid:abc"}
			}}
		]
	}`))
	require.NoError(t, err)

	entries := root.SubElements("entry")
	observation := entries[1].SubElements("resource")[0]
	subject := observation.SubElements("subject")[0]

	r := New()
	target, err := r.Resolve(nil, subject)
	require.NoError(t, err)
	assert.Equal(t, "Patient", target.ResourceType())
}

func TestResolveSelfReference(t *testing.T) {
	root, err := jsonmodel.Parse([]byte(`{
		"resourceType": "Patient",
		"id": "p1",
		"link": [{"other": {"reference": "Patient/p1"}, "type": "seealso"}]
	}`))
	require.NoError(t, err)

	link := root.SubElements("link")[0]
	other := link.SubElements("other")[0]
	r := New()
	target, err := r.Resolve(nil, other)
	require.NoError(t, err)
	assert.Equal(t, root, target)
}

func TestResolveUnresolvableReferenceErrors(t *testing.T) {
	root, err := jsonmodel.Parse([]byte(`{
		"resourceType": "Patient",
		"id": "p1",
		"managingOrganization": {"reference": "Organization/does-not-exist"}
	}`))
	require.NoError(t, err)

	ref := root.SubElements("managingOrganization")[0]
	r := New()
	_, err = r.Resolve(nil, ref)
	assert.Error(t, err)
}
