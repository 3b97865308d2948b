package script

// Flatten collapses nested same-kind composites into a single node with a
// merged child list: All(All(a,b),c) becomes All(a,b,c), and likewise for
// Any. The rewrite is equivalence-preserving for every truth assignment of
// the leaves; it exists so the loader hands the engine shallow trees that
// are cheap to walk and easy to print in diagnostics.
//
// Leaves are returned unchanged. The input is never mutated.
func Flatten(c Condition) Condition {
	switch node := c.(type) {
	case All:
		return All{Children: flattenChildren(node.Children, isAll)}
	case Any:
		return Any{Children: flattenChildren(node.Children, isAny)}
	default:
		return c
	}
}

// flattenChildren flattens each child, then splices children of the same
// composite kind into the parent's list in order.
func flattenChildren(children []Condition, sameKind func(Condition) ([]Condition, bool)) []Condition {
	merged := make([]Condition, 0, len(children))
	for _, child := range children {
		flat := Flatten(child)
		if grandchildren, ok := sameKind(flat); ok {
			merged = append(merged, grandchildren...)
			continue
		}
		merged = append(merged, flat)
	}
	return merged
}

func isAll(c Condition) ([]Condition, bool) {
	if node, ok := c.(All); ok {
		return node.Children, true
	}
	return nil, false
}

func isAny(c Condition) ([]Condition, bool) {
	if node, ok := c.(Any); ok {
		return node.Children, true
	}
	return nil, false
}
