package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirtools/fhirtools/model"
	"github.com/fhirtools/fhirtools/repository"
)

func intInput(vs ...int64) model.Collection {
	c := make(model.Collection, len(vs))
	for i, v := range vs {
		c[i] = model.NewIntegerLiteral(v)
	}
	return c
}

func newCtx() *EvalContext {
	return NewEvalContext(repository.New(), nil)
}

func TestEqEvalWithPromotion(t *testing.T) {
	eq := Eq{Left: IntegerLiteral{Value: 3}, Right: DecimalLiteral{Value: model.DecimalFromInt(3)}}
	out, err := eq.Eval(newCtx(), nil)
	require.NoError(t, err)
	b, err := out.Boolean()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestEqEvalEmptyOperandYieldsEmpty(t *testing.T) {
	eq := Eq{Left: Null{}, Right: IntegerLiteral{Value: 1}}
	out, err := eq.Eval(newCtx(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompareRejectsMultiItemOperand(t *testing.T) {
	cmp := Compare{Left: Literal{Value: intInput(1, 2)}, Right: IntegerLiteral{Value: 1}, Op: OpGreater}
	_, err := cmp.Eval(newCtx(), nil)
	assert.Error(t, err)
}

func TestCompareOperators(t *testing.T) {
	cases := []struct {
		op   CompareOp
		want bool
	}{
		{OpLess, true},
		{OpLessEq, true},
		{OpGreater, false},
		{OpGreaterEq, false},
	}
	for _, tc := range cases {
		cmp := Compare{Left: IntegerLiteral{Value: 1}, Right: IntegerLiteral{Value: 2}, Op: tc.op}
		out, err := cmp.Eval(newCtx(), nil)
		require.NoError(t, err)
		b, err := out.Boolean()
		require.NoError(t, err)
		assert.Equal(t, tc.want, b)
	}
}

func TestBoolOperators(t *testing.T) {
	cases := []struct {
		op         BoolOp
		left, right bool
		want       bool
	}{
		{OpAnd, true, false, false},
		{OpOr, true, false, true},
		{OpXor, true, true, false},
		{OpImplies, false, false, true},
	}
	for _, tc := range cases {
		n := Bool{Left: BoolLiteral{Value: tc.left}, Right: BoolLiteral{Value: tc.right}, Op: tc.op}
		out, err := n.Eval(newCtx(), nil)
		require.NoError(t, err)
		b, err := out.Boolean()
		require.NoError(t, err)
		assert.Equal(t, tc.want, b)
	}
}

func TestBoolVacuousOnEmptyOperand(t *testing.T) {
	n := Bool{Left: Null{}, Right: BoolLiteral{Value: true}, Op: OpOr}
	out, err := n.Eval(newCtx(), nil)
	require.NoError(t, err)
	b, err := out.Boolean()
	require.NoError(t, err)
	assert.True(t, b, "{} or true is true per the three-valued table")
}

func TestAllVacuousTruthOnEmptyInput(t *testing.T) {
	n := All{Input: Literal{Value: model.EmptyCollection}, Criterion: BoolLiteral{Value: false}}
	out, err := n.Eval(newCtx(), nil)
	require.NoError(t, err)
	b, err := out.Boolean()
	require.NoError(t, err)
	assert.True(t, b, "all() on an empty collection is vacuously true")
}

func TestCountAndDistinct(t *testing.T) {
	col := intInput(1, 2, 2, 3)
	count := Count{Input: Literal{Value: col}}
	out, err := count.Eval(newCtx(), nil)
	require.NoError(t, err)
	n, err := out[0].AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	distinct := Distinct{Input: Literal{Value: col}}
	out, err = distinct.Eval(newCtx(), nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestFirstAndTail(t *testing.T) {
	col := intInput(1, 2, 3)
	first, err := (First{Input: Literal{Value: col}}).Eval(newCtx(), nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	v, _ := first[0].AsInt()
	assert.Equal(t, int64(1), v)

	tail, err := (Tail{Input: Literal{Value: col}}).Eval(newCtx(), nil)
	require.NoError(t, err)
	assert.Len(t, tail, 2)

	emptyTail, err := (Tail{Input: Literal{Value: intInput(1)}}).Eval(newCtx(), nil)
	require.NoError(t, err)
	assert.Empty(t, emptyTail)
}

func TestIndexerOutOfBoundsIsEmpty(t *testing.T) {
	col := intInput(1, 2, 3)
	idx := Indexer{Input: Literal{Value: col}, Index: IntegerLiteral{Value: 5}}
	out, err := idx.Eval(newCtx(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInvocationComposesLeftIntoRight(t *testing.T) {
	n := Invocation{Left: Literal{Value: intInput(1, 2)}, Right: Count{Input: This{}}}
	out, err := n.Eval(newCtx(), nil)
	require.NoError(t, err)
	c, err := out[0].AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(2), c)
}
