package fhirpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirtools/fhirtools/expression"
	"github.com/fhirtools/fhirtools/internal/jsonmodel"
	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

const samplePatient = `{
	"resourceType": "Patient",
	"active": true,
	"name": [
		{"use": "official", "family": "Chalmers", "given": ["Peter", "James"]},
		{"use": "usual", "given": ["Jim"]}
	],
	"birthDate": "1974-12-25"
}`

func eval(t *testing.T, src string) model.Collection {
	t.Helper()
	root, err := jsonmodel.Parse([]byte(samplePatient))
	require.NoError(t, err)
	repo := repository.New()
	expr, err := Compile(repo, src)
	require.NoError(t, err)
	ec := expression.NewEvalContext(repo, root)
	out, err := expr.Eval(ec, model.Collection{root})
	require.NoError(t, err)
	return out
}

func TestEvalWhereCount(t *testing.T) {
	out := eval(t, "Patient.name.where(use = 'official').count()")
	require.Len(t, out, 1)
	n, err := out[0].AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEvalSelectProjection(t *testing.T) {
	out := eval(t, "Patient.name.select(given)")
	var given []string
	for _, el := range out {
		s, err := el.AsString()
		require.NoError(t, err)
		given = append(given, s)
	}
	assert.Equal(t, []string{"Peter", "James", "Jim"}, given)
}

func TestEvalDistinct(t *testing.T) {
	out := eval(t, "Patient.name.given.combine($this).distinct()")
	assert.Len(t, out, 3, "distinct must collapse the duplicates introduced by combine($this)")
}

func TestEvalBooleanLiteralEquality(t *testing.T) {
	out := eval(t, "Patient.active = true")
	require.Len(t, out, 1)
	b, err := out[0].AsBool()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestEvalCompileCachesBySource(t *testing.T) {
	repo := repository.New()
	a, err := Compile(repo, "Patient.name")
	require.NoError(t, err)
	b, err := Compile(repo, "Patient.name")
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical (repo, source) pairs must reuse the cached compilation")
}

func TestParseErrorOnUnknownFunction(t *testing.T) {
	_, err := Parse("Patient.bogusFunction()")
	assert.Error(t, err)
}
