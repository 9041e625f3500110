package slicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

func elementInfoWithFixed(fixed model.Element) *repository.ElementInfo {
	ed := &repository.ElementDefinition{Name: "system", Fixed: fixed}
	sd := &repository.StructureDefinition{URL: "http://example.org/fhir/StructureDefinition/slice", Elements: []*repository.ElementDefinition{ed}}
	return repository.NewElementInfo(repository.New(), sd, ed)
}

func TestCompileValueConditionRequiresAFixedCandidate(t *testing.T) {
	_, err := compileValueCondition("system", []*repository.ElementInfo{elementInfoWithFixed(nil)})
	assert.Error(t, err, "a value discriminator with no fixed value anywhere is a compile error")
}

func TestValueConditionMatchesFixedValue(t *testing.T) {
	fixed := model.NewStringLiteral("http://example.org/identifier-system")
	cond, err := compileValueCondition("system", []*repository.ElementInfo{elementInfoWithFixed(fixed)})
	require.NoError(t, err)

	el := &fakeElement{children: map[string]model.Element{"system": model.NewStringLiteral("http://example.org/identifier-system")}}
	ok, err := cond.Matches(nil, el)
	require.NoError(t, err)
	assert.True(t, ok)

	other := &fakeElement{children: map[string]model.Element{"system": model.NewStringLiteral("http://other.org")}}
	ok, err = cond.Matches(nil, other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExistsConditionRequiresPresenceWhenCandidateCardinalityIsMandatory(t *testing.T) {
	info := elementInfoWithFixed(nil)
	info.Element.Cardinality = repository.Cardinality{Min: 1, Max: 1}
	cond, err := compileExistsCondition("system", []*repository.ElementInfo{info})
	require.NoError(t, err)

	present := &fakeElement{children: map[string]model.Element{"system": model.NewStringLiteral("x")}}
	ok, err := cond.Matches(nil, present)
	require.NoError(t, err)
	assert.True(t, ok)

	absent := &fakeElement{children: map[string]model.Element{}}
	ok, err = cond.Matches(nil, absent)
	require.NoError(t, err)
	assert.False(t, ok, "a mandatory discriminator path that is absent fails the exists condition")
}

// fakeElement is a minimal model.Element stub exercising only the
// SubElements traversal that walkRuntimePath needs.
type fakeElement struct {
	children map[string]model.Element
}

var _ model.Element = (*fakeElement)(nil)

func (e *fakeElement) Type() model.Type                { return model.TypeStructured }
func (e *fakeElement) TypeInfo() model.ElementTypeInfo  { return nil }
func (e *fakeElement) Parent() model.Element            { return nil }
func (e *fakeElement) AsInt() (int64, error)            { return 0, &model.ConversionError{} }
func (e *fakeElement) AsDecimal() (model.Decimal, error) { return model.Decimal{}, &model.ConversionError{} }
func (e *fakeElement) AsBool() (bool, error)            { return false, &model.ConversionError{} }
func (e *fakeElement) AsString() (string, error)        { return "", &model.ConversionError{} }
func (e *fakeElement) AsDate() (model.Timestamp, error) { return model.Timestamp{}, &model.ConversionError{} }
func (e *fakeElement) AsDateTime() (model.Timestamp, error) {
	return model.Timestamp{}, &model.ConversionError{}
}
func (e *fakeElement) AsTime() (model.Timestamp, error) { return model.Timestamp{}, &model.ConversionError{} }
func (e *fakeElement) AsQuantity() (model.Quantity, error) {
	return model.Quantity{}, &model.ConversionError{}
}
func (e *fakeElement) SubElementNames() []string {
	names := make([]string, 0, len(e.children))
	for name := range e.children {
		names = append(names, name)
	}
	return names
}
func (e *fakeElement) SubElements(name string) []model.Element {
	if el, ok := e.children[name]; ok {
		return []model.Element{el}
	}
	return nil
}
func (e *fakeElement) HasSubElement(name string) bool {
	_, ok := e.children[name]
	return ok
}
func (e *fakeElement) IsResource() bool          { return false }
func (e *fakeElement) IsContainerResource() bool { return false }
func (e *fakeElement) ResourceType() string      { return "" }
func (e *fakeElement) Profiles() []string        { return nil }
func (e *fakeElement) CompareTo(other model.Element) (model.Ordering, error) {
	return model.CompareElements(e, other)
}
func (e *fakeElement) Equals(other model.Element) model.TriState {
	return model.EqualsElements(e, other)
}
