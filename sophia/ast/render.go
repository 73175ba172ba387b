package ast

import "strings"

// RenderType converts a type expression into its canonical textual form, the
// exact inverse of the parser's type grammar. It is total: every variant of
// the Type sum renders, and alias wrappers are invisible.
//
// Separator spacing is part of the format: tuple, record and application
// elements join with "," while constructor arguments join with ", ". Any
// consumer that re-parses rendered text positionally depends on this.
func RenderType(t Type) string {
	switch n := t.(type) {
	case *TVar:
		return n.Name
	case *TypeId:
		return n.Name
	case *TypeCon:
		return n.Name
	case *TupleType:
		return "(" + joinTypes(n.Elems, ",") + ")"
	case *RecordType:
		parts := make([]string, 0, len(n.Fields))
		for _, f := range n.Fields {
			parts = append(parts, f.Name+" : "+RenderType(f.Type))
		}
		return "{" + strings.Join(parts, ",") + "}"
	case *AppType:
		return n.Id + "(" + joinTypes(n.Args, ",") + ")"
	case *VariantType:
		parts := make([]string, 0, len(n.Cons))
		for i := range n.Cons {
			parts = append(parts, RenderType(&n.Cons[i]))
		}
		return strings.Join(parts, " | ")
	case *ConstrType:
		return n.Tag + "(" + joinTypes(n.Args, ", ") + ")"
	case *AliasType:
		return RenderType(n.Type)
	default:
		return ""
	}
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, RenderType(t))
	}
	return strings.Join(parts, sep)
}
