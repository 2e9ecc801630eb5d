package graph

import (
	"fmt"
	"strings"
)

// valueKind is the closed set of object shapes an assertion can carry.
type valueKind int

const (
	kindString valueKind = iota
	kindEnum
	kindUID
)

// Value is the object of one relation assertion: a string literal, an enum
// literal or a node reference. Construct values through String, Enum and UID
// so escaping happens exactly once.
type Value struct {
	kind valueKind
	raw  string
}

// String returns a string-literal value; raw is escaped for the mutation
// syntax.
func String(raw string) Value {
	return Value{kind: kindString, raw: escapeString(raw)}
}

// Escaped returns a string-literal value whose text has already been run
// through the codec's canonical form. No further escaping is applied.
func Escaped(canonical string) Value {
	return Value{kind: kindString, raw: canonical}
}

// Enum returns an enum-literal value. Enum members come from closed sets in
// pkg/types and never need escaping.
func Enum(member string) Value {
	return Value{kind: kindEnum, raw: member}
}

// UID returns a node-reference value pointing at an existing node.
func UID(uid string) Value {
	return Value{kind: kindUID, raw: uid}
}

func (v Value) render() string {
	if v.kind == kindUID {
		return "<" + v.raw + ">"
	}
	return `"` + v.raw + `"`
}

// Triple is one (relation, value) pair to assert on the upserted node.
// Repeated predicates accumulate; the store treats identical assertions as
// idempotent.
type Triple struct {
	Predicate string
	Object    Value
}

// Ref appends a node-reference triple to rels and returns the extended list.
func Ref(rels []Triple, predicate, uid string) []Triple {
	return append(rels, Triple{Predicate: predicate, Object: UID(uid)})
}

// escapeString makes raw safe to embed in a double-quoted N-Quad literal.
// The original data contains embedded quotes and the occasional newline.
func escapeString(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// upsertQuery builds the read half of an upsert block: it binds the variable
// u to the at-most-one node of nodeType whose key attribute equals keyValue.
func upsertQuery(nodeType, keyName, keyValue string) string {
	return fmt.Sprintf(`{ u as node(func: eq(%s.%s, "%s")) { uid } }`,
		nodeType, keyName, escapeString(keyValue))
}

// upsertNquads builds the mutation half: every relation in rels, the key
// attribute itself and the type assertion, all on uid(u) so the store binds
// them to the matched node or to one fresh node when the query found nothing.
func upsertNquads(nodeType, keyName, keyValue string, rels []Triple) string {
	var b strings.Builder
	for _, t := range rels {
		fmt.Fprintf(&b, "uid(u) <%s.%s> %s .\n", nodeType, t.Predicate, t.Object.render())
	}
	fmt.Fprintf(&b, "uid(u) <%s.%s> %s .\n", nodeType, keyName, String(keyValue).render())
	fmt.Fprintf(&b, "uid(u) <dgraph.type> \"%s\" .", nodeType)
	return b.String()
}
