package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareElementsPromotesIntegerToDecimal(t *testing.T) {
	i := NewIntegerLiteral(3)
	d := NewDecimalLiteral(DecimalFromInt(3))
	ord, err := CompareElements(i, d)
	assert.NoError(t, err)
	assert.Equal(t, Equal, ord)
}

func TestCompareElementsIncompatibleTypes(t *testing.T) {
	_, err := CompareElements(NewStringLiteral("a"), NewBooleanLiteral(true))
	assert.ErrorIs(t, err, ErrNotComparable)
}

func TestCompareElementsQuantityRequiresMatchingUnit(t *testing.T) {
	mg := NewQuantityLiteral(Quantity{Value: DecimalFromInt(5), Unit: "mg"})
	ml := NewQuantityLiteral(Quantity{Value: DecimalFromInt(5), Unit: "ml"})
	_, err := CompareElements(mg, ml)
	assert.ErrorIs(t, err, ErrNotComparable)
}

func TestEqualsElementsCrossConcreteType(t *testing.T) {
	// A *Literal on either side of the comparison must behave identically —
	// this is what lets a host element (e.g. internal/jsonmodel's Element)
	// compare correctly against a literal operand regardless of which side
	// of the expression it appears on.
	a := NewIntegerLiteral(4)
	b := NewDecimalLiteral(DecimalFromInt(4))
	assert.Equal(t, True, EqualsElements(a, b))
	assert.Equal(t, True, EqualsElements(b, a))
}
