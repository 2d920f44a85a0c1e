package search

// Node is a storage-agnostic predicate. Stores translate the tree into their own query
// language; the in-memory store evaluates it directly.
type Node interface {
	node()
}

// And matches when every child matches. An And with no children matches everything.
type And struct {
	Nodes []Node
}

// Or matches when any child matches. An Or with no children matches nothing.
type Or struct {
	Nodes []Node
}

// Eq is an equality predicate. Value is a string, bool, float64, time.Time or uuid.UUID.
type Eq struct {
	Field Field
	Value any
}

// Range is a bounded comparison; nil bounds are open. Values are float64 or time.Time.
type Range struct {
	Field Field
	Gt    any
	Gte   any
	Lt    any
	Lte   any
}

// Text is a case-insensitive substring match.
type Text struct {
	Field Field
	Value string
}

func (And) node()   {}
func (Or) node()    {}
func (Eq) node()    {}
func (Range) node() {}
func (Text) node()  {}

// All builds a conjunction, dropping nil nodes and flattening nested Ands so the
// resulting tree has one top-level conjunct per rule.
func All(nodes ...Node) And {
	out := And{}
	for _, n := range nodes {
		switch v := n.(type) {
		case nil:
			continue
		case And:
			out.Nodes = append(out.Nodes, All(v.Nodes...).Nodes...)
		default:
			out.Nodes = append(out.Nodes, v)
		}
	}
	return out
}

// AnyText expands one search string into a disjunction of Text matches over fields.
func AnyText(value string, fields []Field) Or {
	out := Or{Nodes: make([]Node, 0, len(fields))}
	for _, f := range fields {
		out.Nodes = append(out.Nodes, Text{Field: f, Value: value})
	}
	return out
}

// Walk visits every node depth first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch v := n.(type) {
	case And:
		for _, c := range v.Nodes {
			Walk(c, fn)
		}
	case Or:
		for _, c := range v.Nodes {
			Walk(c, fn)
		}
	}
}
