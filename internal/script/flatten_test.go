package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalBools interprets a condition tree where every leaf is HasFlag("a"),
// HasFlag("b"), ... against a truth assignment. It exists so flattening can
// be checked for equivalence without dragging in world state.
func evalBools(c Condition, assignment map[string]bool) bool {
	switch node := c.(type) {
	case HasFlag:
		return assignment[node.Flag]
	case All:
		for _, child := range node.Children {
			if !evalBools(child, assignment) {
				return false
			}
		}
		return true
	case Any:
		for _, child := range node.Children {
			if evalBools(child, assignment) {
				return true
			}
		}
		return false
	default:
		panic("unexpected condition in test")
	}
}

func TestFlatten_NestedAll(t *testing.T) {
	a := HasFlag{Flag: "a"}
	b := HasFlag{Flag: "b"}
	c := HasFlag{Flag: "c"}

	nested := All{Children: []Condition{All{Children: []Condition{a, b}}, c}}
	flat := Flatten(nested)

	top, ok := flat.(All)
	require.True(t, ok, "flattened root should stay All")
	require.Len(t, top.Children, 3, "All(All(a,b),c) should flatten to All(a,b,c)")
	assert.Equal(t, a, top.Children[0])
	assert.Equal(t, b, top.Children[1])
	assert.Equal(t, c, top.Children[2])
}

func TestFlatten_PreservesTruthTable(t *testing.T) {
	a := HasFlag{Flag: "a"}
	b := HasFlag{Flag: "b"}
	c := HasFlag{Flag: "c"}

	trees := []Condition{
		All{Children: []Condition{All{Children: []Condition{a, b}}, c}},
		Any{Children: []Condition{Any{Children: []Condition{a, b}}, c}},
		All{Children: []Condition{Any{Children: []Condition{a, Any{Children: []Condition{b}}}}, c}},
		Any{Children: []Condition{All{Children: []Condition{a, All{Children: []Condition{b, c}}}}}},
	}

	// Every truth assignment of a, b, c.
	for _, tree := range trees {
		flat := Flatten(tree)
		for bits := 0; bits < 8; bits++ {
			assignment := map[string]bool{
				"a": bits&1 != 0,
				"b": bits&2 != 0,
				"c": bits&4 != 0,
			}
			assert.Equal(t,
				evalBools(tree, assignment),
				evalBools(flat, assignment),
				"flattening changed semantics for assignment %v", assignment)
		}
	}
}

func TestFlatten_MixedKindsNotMerged(t *testing.T) {
	a := HasFlag{Flag: "a"}
	b := HasFlag{Flag: "b"}

	// Any inside All must stay a separate node.
	tree := All{Children: []Condition{Any{Children: []Condition{a, b}}, a}}
	flat := Flatten(tree)

	top, ok := flat.(All)
	require.True(t, ok)
	require.Len(t, top.Children, 2)
	_, ok = top.Children[0].(Any)
	assert.True(t, ok, "Any child should not merge into All parent")
}

func TestFlatten_LeafUnchanged(t *testing.T) {
	leaf := MissingFlag{Flag: "x"}
	assert.Equal(t, Condition(leaf), Flatten(leaf))
}

func TestFlatten_DeepNesting(t *testing.T) {
	a := HasFlag{Flag: "a"}

	// All(All(All(All(a)))) collapses to All(a).
	tree := Condition(All{Children: []Condition{a}})
	for i := 0; i < 3; i++ {
		tree = All{Children: []Condition{tree}}
	}

	flat := Flatten(tree)
	top, ok := flat.(All)
	require.True(t, ok)
	require.Len(t, top.Children, 1)
	assert.Equal(t, a, top.Children[0])
}
