package query

import "strings"

// anythingPattern is the sentinel empty-positive head used to detect
// "matches anything" terms during pruning.
const anythingPattern = ""

// Compile parses a query string and normalizes it into CNF (spec §4.1).
//
// keepLeadingAnything controls whether a leading "matches anything" term
// survives pruning; it should be true only when a `-f FILE` pattern feed is
// active and supplies the first AND-term.
func Compile(queryStr string, flags Flags, keepLeadingAnything bool) *CNF {
	ast := Parse(queryStr, flags)
	nnf := toNNF(ast, false)
	terms := toTerms(distribute(nnf))
	return prune(&CNF{Terms: terms}, keepLeadingAnything)
}

// CompileSimple builds a CNF for non-boolean mode: one AND-term whose
// positives are the given patterns, each split on literal \n/\r and
// rejoined with alternation (spec §4.1 "Split-on-newline").
func CompileSimple(patterns []string) *CNF {
	var positives []string
	for _, pat := range patterns {
		positives = append(positives, splitNewlineJoin(pat))
	}
	return &CNF{Terms: []Term{{Positives: positives}}}
}

func splitNewlineJoin(pat string) string {
	lines := strings.FieldsFunc(pat, func(r rune) bool { return r == '\n' || r == '\r' })
	if len(lines) <= 1 {
		return pat
	}
	return strings.Join(lines, "|")
}

// toNNF pushes negation to the leaves (double-negation elimination + De
// Morgan), returning a tree built only from andNode/orNode/litNode/notNode
// (only over litNode).
func toNNF(n node, negate bool) node {
	switch v := n.(type) {
	case litNode:
		if negate {
			return notNode{operand: v}
		}
		return v

	case notNode:
		// double negation: ¬¬P -> P (when the outer negate itself is also
		// a negation, the two cancel and we recurse without flipping
		// further beyond this node's own negation).
		return toNNF(v.operand, !negate)

	case andNode:
		ops := make([]node, len(v.operands))
		for i, o := range v.operands {
			ops[i] = toNNF(o, negate)
		}
		if negate {
			// De Morgan: ¬(P∧Q) -> ¬P∨¬Q
			return flattenOr(orNode{operands: ops})
		}
		return flattenAnd(andNode{operands: ops})

	case orNode:
		ops := make([]node, len(v.operands))
		for i, o := range v.operands {
			ops[i] = toNNF(o, negate)
		}
		if negate {
			// De Morgan: ¬(P∨Q) -> ¬P∧¬Q
			return flattenAnd(andNode{operands: ops})
		}
		return flattenOr(orNode{operands: ops})
	}
	return n
}

func flattenAnd(n andNode) node {
	var out []node
	for _, o := range n.operands {
		if a, ok := o.(andNode); ok {
			out = append(out, a.operands...)
		} else {
			out = append(out, o)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return andNode{operands: out}
}

func flattenOr(n orNode) node {
	var out []node
	for _, o := range n.operands {
		if r, ok := o.(orNode); ok {
			out = append(out, r.operands...)
		} else {
			out = append(out, o)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return orNode{operands: out}
}

// distribute applies OR-over-AND distribution recursively until the tree is
// a flat AND of ORs: (P∧Q)∨R -> (P∨R)∧(Q∨R), and pairwise for two ANDs.
func distribute(n node) node {
	switch v := n.(type) {
	case litNode, notNode:
		return n

	case andNode:
		ops := make([]node, len(v.operands))
		for i, o := range v.operands {
			ops[i] = distribute(o)
		}
		return flattenAnd(andNode{operands: ops})

	case orNode:
		ops := make([]node, len(v.operands))
		for i, o := range v.operands {
			ops[i] = distribute(o)
		}
		// fold pairwise: combine ops one at a time via distributeTwo
		acc := ops[0]
		for _, next := range ops[1:] {
			acc = distributeTwo(acc, next)
		}
		return acc
	}
	return n
}

// distributeTwo distributes OR over AND for two already-distributed
// operands, producing a flat AND of ORs.
func distributeTwo(a, b node) node {
	aAnd, aIsAnd := a.(andNode)
	bAnd, bIsAnd := b.(andNode)

	switch {
	case aIsAnd && bIsAnd:
		var conjuncts []node
		for _, p := range aAnd.operands {
			for _, r := range bAnd.operands {
				conjuncts = append(conjuncts, flattenOr(orNode{operands: []node{p, r}}))
			}
		}
		return flattenAnd(andNode{operands: conjuncts})

	case aIsAnd:
		var conjuncts []node
		for _, p := range aAnd.operands {
			conjuncts = append(conjuncts, flattenOr(orNode{operands: []node{p, b}}))
		}
		return flattenAnd(andNode{operands: conjuncts})

	case bIsAnd:
		var conjuncts []node
		for _, r := range bAnd.operands {
			conjuncts = append(conjuncts, flattenOr(orNode{operands: []node{a, r}}))
		}
		return flattenAnd(andNode{operands: conjuncts})

	default:
		return flattenOr(orNode{operands: []node{a, b}})
	}
}

// toTerms converts a flat AND-of-ORs tree (or a single OR, or a single
// literal/negation) into a slice of Term.
func toTerms(n node) []Term {
	switch v := n.(type) {
	case andNode:
		terms := make([]Term, 0, len(v.operands))
		for _, o := range v.operands {
			terms = append(terms, toTerm(o))
		}
		return terms
	default:
		return []Term{toTerm(n)}
	}
}

func toTerm(n node) Term {
	var t Term
	switch v := n.(type) {
	case orNode:
		for _, o := range v.operands {
			addDisjunct(&t, o)
		}
	default:
		addDisjunct(&t, n)
	}
	return t
}

func addDisjunct(t *Term, n node) {
	switch v := n.(type) {
	case litNode:
		t.Positives = append(t.Positives, v.pattern)
	case notNode:
		if lit, ok := v.operand.(litNode); ok {
			t.Negatives = append(t.Negatives, lit.pattern)
		}
	}
}

// prune removes terms whose head is the "matches anything" pattern (an
// empty Positives slice standing for the unconditional positive - i.e. a
// literal empty raw pattern), except the first when keepLeadingAnything is
// set. Terms with an empty OR of positives but one or more NOTs are always
// kept: they fail the file only when all NOTs match.
func prune(c *CNF, keepLeadingAnything bool) *CNF {
	var out []Term
	for i, t := range c.Terms {
		if isAnythingHead(t) && len(t.Negatives) == 0 {
			if i == 0 && keepLeadingAnything {
				out = append(out, t)
			}
			continue
		}
		out = append(out, t)
	}
	c.Terms = out
	return c
}

func isAnythingHead(t Term) bool {
	if len(t.Positives) == 0 {
		return false // empty-positives-with-NOTs term, not an "anything" term
	}
	for _, p := range t.Positives {
		if p != anythingPattern {
			return false
		}
	}
	return true
}
