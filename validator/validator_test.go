package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirtools/fhirtools/internal/jsonmodel"
	"github.com/fhirtools/fhirtools/repository"
)

func buildPatientProfile() *repository.StructureDefinition {
	b := repository.NewStructureDefinitionBuilder("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", repository.KindResource, repository.DerivationSpecialization)
	b.AddElement(repository.ElementDefinition{OriginalName: "Patient", Name: "Patient"})
	b.AddElement(repository.ElementDefinition{
		OriginalName: "Patient.gender", Name: "Patient.gender",
		TypeID: "code", Cardinality: repository.Cardinality{Min: 1, Max: 1},
	})
	b.AddElement(repository.ElementDefinition{
		OriginalName: "Patient.name", Name: "Patient.name",
		TypeID: "HumanName", IsArray: true, Cardinality: repository.Cardinality{MaxUnbounded: true},
	})
	sd, _ := b.Build()
	return sd
}

func newRepoWithPatientProfile(t *testing.T) *repository.Repository {
	t.Helper()
	repo := repository.New()
	require.NoError(t, repo.AddStructureDefinition(buildPatientProfile()))
	return repo
}

func TestValidateMissingRequiredFieldIsRequiredError(t *testing.T) {
	repo := newRepoWithPatientProfile(t)
	v := New(repo)

	root, err := jsonmodel.Parse([]byte(`{"resourceType": "Patient", "id": "p1"}`))
	require.NoError(t, err)

	results, err := v.Validate(root)
	require.NoError(t, err)
	require.NotEmpty(t, results.Issues)
	assert.Equal(t, CodeRequired, results.Issues[0].Code)
	assert.False(t, results.IsValid())
}

func TestValidatePresentFieldsProduceNoCardinalityIssue(t *testing.T) {
	repo := newRepoWithPatientProfile(t)
	v := New(repo)

	root, err := jsonmodel.Parse([]byte(`{"resourceType": "Patient", "id": "p1", "gender": "male", "name": [{"family": "Smith"}]}`))
	require.NoError(t, err)

	results, err := v.Validate(root)
	require.NoError(t, err)
	assert.True(t, results.IsValid())
}

func TestValidateUnknownProfileURLIsNotFoundError(t *testing.T) {
	repo := newRepoWithPatientProfile(t)
	v := New(repo)

	root, err := jsonmodel.Parse([]byte(`{"resourceType": "Patient", "id": "p1", "gender": "male"}`))
	require.NoError(t, err)

	results, err := v.Validate(root, "http://example.org/fhir/StructureDefinition/missing")
	require.NoError(t, err)
	require.Len(t, results.Issues, 1)
	assert.Equal(t, CodeNotFound, results.Issues[0].Code)
}

func TestValidateWithNoProfileUsesResourceType(t *testing.T) {
	repo := newRepoWithPatientProfile(t)
	v := New(repo)

	root, err := jsonmodel.Parse([]byte(`{"resourceType": "Observation", "id": "o1"}`))
	require.NoError(t, err)

	_, err = v.Validate(root)
	assert.Error(t, err, "no structure definition is registered for Observation")
}

func TestConformsToUsesErrorThreshold(t *testing.T) {
	repo := newRepoWithPatientProfile(t)
	v := New(repo)

	valid, err := jsonmodel.Parse([]byte(`{"resourceType": "Patient", "id": "p1", "gender": "male"}`))
	require.NoError(t, err)
	ok, err := v.ConformsTo(nil, valid, "http://example.org/fhir/StructureDefinition/Patient")
	require.NoError(t, err)
	assert.True(t, ok)

	invalid, err := jsonmodel.Parse([]byte(`{"resourceType": "Patient", "id": "p2"}`))
	require.NoError(t, err)
	ok, err = v.ConformsTo(nil, invalid, "http://example.org/fhir/StructureDefinition/Patient")
	require.NoError(t, err)
	assert.False(t, ok)
}
