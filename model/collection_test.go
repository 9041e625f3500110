package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ints(vs ...int64) Collection {
	c := make(Collection, len(vs))
	for i, v := range vs {
		c[i] = NewIntegerLiteral(v)
	}
	return c
}

func TestCollectionEqualsSymmetry(t *testing.T) {
	a := ints(1, 2, 3)
	b := ints(1, 2, 3)
	eq1 := a.Equals(b)
	eq2 := b.Equals(a)
	assert.Equal(t, eq1, eq2, "collection equality must be symmetric")
	assert.Equal(t, True, eq1)
}

func TestCollectionEqualsEmptyPropagates(t *testing.T) {
	assert.Equal(t, Empty, EmptyCollection.Equals(ints(1)))
	assert.Equal(t, Empty, ints(1).Equals(EmptyCollection))
}

func TestCollectionEqualsLengthMismatch(t *testing.T) {
	assert.Equal(t, False, ints(1, 2).Equals(ints(1, 2, 3)))
}

func TestDistinctIdempotent(t *testing.T) {
	c := ints(1, 2, 2, 3, 1)
	once := c.Distinct()
	twice := once.Distinct()
	assert.Equal(t, True, once.Equals(twice), "Distinct applied twice must equal Distinct applied once")
	assert.Len(t, once, 3)
}

func TestUnionDedup(t *testing.T) {
	u := Union(ints(1, 2), ints(2, 3))
	assert.Len(t, u, 3, "Union must deduplicate shared elements")
	assert.True(t, u.Contains(NewIntegerLiteral(1)))
	assert.True(t, u.Contains(NewIntegerLiteral(2)))
	assert.True(t, u.Contains(NewIntegerLiteral(3)))
}

func TestBooleanCoercion(t *testing.T) {
	b, err := EmptyCollection.Boolean()
	assert.NoError(t, err)
	assert.False(t, b)

	b, err = Collection{NewBooleanLiteral(false)}.Boolean()
	assert.NoError(t, err)
	assert.False(t, b)

	b, err = Collection{NewStringLiteral("x")}.Boolean()
	assert.NoError(t, err)
	assert.True(t, b, "a single non-boolean item coerces to true")

	_, err = ints(1, 2).Boolean()
	assert.Error(t, err, "a multi-item collection cannot coerce to boolean")
}
