package ast

import "fmt"

// Module is the root node for a .aes source file. A file may declare several
// contracts; downstream consumers that only handle one take the first.
type Module struct {
	Contracts []ContractDecl
}

// ContractDecl is a contract declaration node. Decls preserves source order.
type ContractDecl struct {
	Name   string
	Line   int
	Column int
	Decls  []Decl
}

const (
	DeclFunction = "function"
	DeclType     = "type"
	DeclDatatype = "datatype"
)

// Decl is a single contract member. Kind selects which fields are populated:
// functions use Params/Return/Body, type and datatype declarations use
// TypeVars/Def. Line/Column is the position of the introducing keyword and
// orders sibling declarations.
type Decl struct {
	Kind     string
	Name     string
	Line     int
	Column   int
	Params   []FieldDecl
	Return   Type
	Body     *Expr
	TypeVars []string
	Def      Type
}

type FieldDecl struct {
	Name string
	Type Type
}

// Type is the closed sum of type-expression shapes. Every node the parser
// can produce is one of the variants below; RenderType handles them all.
type Type interface {
	typeNode()
}

// TVar is a type parameter, e.g. 'a.
type TVar struct {
	Name string
}

// TypeId is a bare lowercase identifier referencing a builtin or declared type.
type TypeId struct {
	Name string
}

// TypeCon is a capitalized identifier, used for variant tags referenced in
// type position.
type TypeCon struct {
	Name string
}

type TupleType struct {
	Elems []Type
}

type FieldType struct {
	Name string
	Type Type
}

type RecordType struct {
	Fields []FieldType
}

// AppType is a named type applied to type arguments, e.g. list(int).
type AppType struct {
	Id   string
	Args []Type
}

// VariantType is an ordered list of constructor alternatives.
type VariantType struct {
	Cons []ConstrType
}

// ConstrType is a constructor tag with its argument types.
type ConstrType struct {
	Tag  string
	Args []Type
}

// AliasType wraps the body of a plain `type` declaration. It is invisible
// when rendered.
type AliasType struct {
	Type Type
}

func (*TVar) typeNode()        {}
func (*TypeId) typeNode()      {}
func (*TypeCon) typeNode()     {}
func (*TupleType) typeNode()   {}
func (*RecordType) typeNode()  {}
func (*AppType) typeNode()     {}
func (*VariantType) typeNode() {}
func (*ConstrType) typeNode()  {}
func (*AliasType) typeNode()   {}

// Expr is a function-body expression. The ACI treats bodies as opaque, so a
// single tagged struct is enough here.
type Expr struct {
	Kind   string
	Value  string
	Op     string
	Left   *Expr
	Right  *Expr
	Callee *Expr
	Args   []*Expr
	Object *Expr
	Member string
	Cond   *Expr
	Then   *Expr
	Else   *Expr
}

func (m *Module) String() string {
	if m == nil {
		return "<nil>"
	}
	if len(m.Contracts) == 0 {
		return "<no contract>"
	}
	out := ""
	for i := range m.Contracts {
		c := &m.Contracts[i]
		out += fmt.Sprintf("contract %s =\n", c.Name)
		for _, d := range c.Decls {
			switch d.Kind {
			case DeclFunction:
				out += fmt.Sprintf("  function %s(", d.Name)
				for i, p := range d.Params {
					if i > 0 {
						out += ", "
					}
					out += fmt.Sprintf("%s : %s", p.Name, RenderType(p.Type))
				}
				out += ")"
				if d.Return != nil {
					out += " : " + RenderType(d.Return)
				}
				out += " = ...\n"
			case DeclType, DeclDatatype:
				out += fmt.Sprintf("  %s %s", d.Kind, d.Name)
				if len(d.TypeVars) > 0 {
					out += "("
					for i, v := range d.TypeVars {
						if i > 0 {
							out += ", "
						}
						out += v
					}
					out += ")"
				}
				out += " = " + RenderType(d.Def) + "\n"
			}
		}
	}
	return out
}
