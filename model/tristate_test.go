package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriStateTruthTables(t *testing.T) {
	vals := []TriState{True, False, Empty}

	and := map[[2]TriState]TriState{
		{True, True}: True, {True, False}: False, {True, Empty}: Empty,
		{False, True}: False, {False, False}: False, {False, Empty}: False,
		{Empty, True}: Empty, {Empty, False}: False, {Empty, Empty}: Empty,
	}
	or := map[[2]TriState]TriState{
		{True, True}: True, {True, False}: True, {True, Empty}: True,
		{False, True}: True, {False, False}: False, {False, Empty}: Empty,
		{Empty, True}: True, {Empty, False}: Empty, {Empty, Empty}: Empty,
	}

	for _, a := range vals {
		for _, b := range vals {
			assert.Equal(t, and[[2]TriState{a, b}], a.And(b), "And(%v,%v)", a, b)
			assert.Equal(t, or[[2]TriState{a, b}], a.Or(b), "Or(%v,%v)", a, b)
		}
	}
}

func TestTriStateNot(t *testing.T) {
	assert.Equal(t, False, True.Not())
	assert.Equal(t, True, False.Not())
	assert.Equal(t, Empty, Empty.Not())
}

func TestTriStateImplies(t *testing.T) {
	assert.Equal(t, True, False.Implies(False))
	assert.Equal(t, True, False.Implies(Empty))
	assert.Equal(t, True, Empty.Implies(True))
	assert.Equal(t, Empty, Empty.Implies(False))
	assert.Equal(t, Empty, Empty.Implies(Empty))
	assert.Equal(t, True, True.Implies(True))
	assert.Equal(t, False, True.Implies(False))
}

func TestTriStateXor(t *testing.T) {
	assert.Equal(t, False, True.Xor(True))
	assert.Equal(t, True, True.Xor(False))
	assert.Equal(t, Empty, True.Xor(Empty))
	assert.Equal(t, Empty, Empty.Xor(Empty))
}
