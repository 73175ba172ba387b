package sema

import (
	"fmt"

	"github.com/KCHENPENGFEI/aesophia/sophia/ast"
	"github.com/KCHENPENGFEI/aesophia/sophia/diag"
)

// TypedModule is the semantic-checked representation consumed by the
// interface encoder.
type TypedModule struct {
	AST *ast.Module
}

// Options is reserved for future checker configuration; callers currently
// always pass the zero value.
type Options struct{}

var builtinTypes = map[string]struct{}{
	"int":          {},
	"bool":         {},
	"string":       {},
	"address":      {},
	"hash":         {},
	"signature":    {},
	"unit":         {},
	"bits":         {},
	"list":         {},
	"map":          {},
	"option":       {},
	"oracle":       {},
	"oracle_query": {},
}

// Check validates declaration-level semantics of a parsed module: duplicate
// names, duplicate parameters and constructors, unresolved type references
// and unbound type variables in type definitions. It never rewrites the AST.
func Check(filename string, m *ast.Module, _ Options) (*TypedModule, diag.Diagnostics) {
	var diags diag.Diagnostics
	if m == nil {
		return nil, diags
	}

	if len(m.Contracts) == 0 {
		diags = append(diags, diag.Diagnostic{
			Code:    diag.CodeSemaMissingContract,
			Message: "missing contract declaration",
			Span:    defaultSpan(filename),
		})
		return nil, diags
	}

	for i := range m.Contracts {
		diags = append(diags, checkContract(filename, &m.Contracts[i])...)
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return &TypedModule{AST: m}, nil
}

func checkContract(filename string, c *ast.ContractDecl) diag.Diagnostics {
	var diags diag.Diagnostics

	declared := map[string]struct{}{}
	funcSeen := map[string]struct{}{}
	for _, d := range c.Decls {
		if d.Kind == ast.DeclType || d.Kind == ast.DeclDatatype {
			if _, exists := declared[d.Name]; exists {
				diags = append(diags, diag.Diagnostic{
					Code:    diag.CodeSemaDuplicateType,
					Message: fmt.Sprintf("duplicate type '%s'", d.Name),
					Span:    declSpan(filename, d),
				})
				continue
			}
			declared[d.Name] = struct{}{}
		}
	}

	conSeen := map[string]string{}
	for _, d := range c.Decls {
		switch d.Kind {
		case ast.DeclFunction:
			if _, exists := funcSeen[d.Name]; exists {
				diags = append(diags, diag.Diagnostic{
					Code:    diag.CodeSemaDuplicateFunction,
					Message: fmt.Sprintf("duplicate function '%s'", d.Name),
					Span:    declSpan(filename, d),
				})
			}
			funcSeen[d.Name] = struct{}{}

			paramSeen := map[string]struct{}{}
			for _, p := range d.Params {
				if _, exists := paramSeen[p.Name]; exists {
					diags = append(diags, diag.Diagnostic{
						Code:    diag.CodeSemaDuplicateParam,
						Message: fmt.Sprintf("duplicate parameter '%s' in function '%s'", p.Name, d.Name),
						Span:    declSpan(filename, d),
					})
				}
				paramSeen[p.Name] = struct{}{}
				diags = append(diags, checkTypeRefs(filename, d, p.Type, declared, nil)...)
			}
			if d.Return != nil {
				diags = append(diags, checkTypeRefs(filename, d, d.Return, declared, nil)...)
			}
		case ast.DeclType:
			bound := tvarSet(d.TypeVars)
			diags = append(diags, checkTypeRefs(filename, d, d.Def, declared, bound)...)
		case ast.DeclDatatype:
			bound := tvarSet(d.TypeVars)
			if v, ok := d.Def.(*ast.VariantType); ok {
				for i := range v.Cons {
					con := &v.Cons[i]
					if owner, exists := conSeen[con.Tag]; exists {
						diags = append(diags, diag.Diagnostic{
							Code: diag.CodeSemaDuplicateCon,
							Message: fmt.Sprintf("constructor '%s' of datatype '%s' already declared in '%s'",
								con.Tag, d.Name, owner),
							Span: declSpan(filename, d),
						})
					}
					conSeen[con.Tag] = d.Name
					for _, arg := range con.Args {
						diags = append(diags, checkTypeRefs(filename, d, arg, declared, bound)...)
					}
				}
			}
		}
	}
	return diags
}

// checkTypeRefs walks a type expression. bound is nil for function
// signatures, where type variables quantify implicitly.
func checkTypeRefs(filename string, d ast.Decl, t ast.Type, declared map[string]struct{}, bound map[string]struct{}) diag.Diagnostics {
	var diags diag.Diagnostics
	switch n := t.(type) {
	case *ast.TVar:
		if bound != nil {
			if _, ok := bound[n.Name]; !ok {
				diags = append(diags, diag.Diagnostic{
					Code:    diag.CodeSemaUnboundTypeVar,
					Message: fmt.Sprintf("unbound type variable %s in '%s'", n.Name, d.Name),
					Span:    declSpan(filename, d),
				})
			}
		}
	case *ast.TypeId:
		diags = append(diags, checkTypeName(filename, d, n.Name, declared)...)
	case *ast.TypeCon:
		// Constructor references in type position are resolved per use site
		// by consumers; nothing to check here.
	case *ast.TupleType:
		for _, e := range n.Elems {
			diags = append(diags, checkTypeRefs(filename, d, e, declared, bound)...)
		}
	case *ast.RecordType:
		for _, f := range n.Fields {
			diags = append(diags, checkTypeRefs(filename, d, f.Type, declared, bound)...)
		}
	case *ast.AppType:
		diags = append(diags, checkTypeName(filename, d, n.Id, declared)...)
		for _, a := range n.Args {
			diags = append(diags, checkTypeRefs(filename, d, a, declared, bound)...)
		}
	case *ast.VariantType:
		for i := range n.Cons {
			diags = append(diags, checkTypeRefs(filename, d, &n.Cons[i], declared, bound)...)
		}
	case *ast.ConstrType:
		for _, a := range n.Args {
			diags = append(diags, checkTypeRefs(filename, d, a, declared, bound)...)
		}
	case *ast.AliasType:
		diags = append(diags, checkTypeRefs(filename, d, n.Type, declared, bound)...)
	}
	return diags
}

func checkTypeName(filename string, d ast.Decl, name string, declared map[string]struct{}) diag.Diagnostics {
	if _, ok := builtinTypes[name]; ok {
		return nil
	}
	if _, ok := declared[name]; ok {
		return nil
	}
	return diag.Diagnostics{{
		Code:    diag.CodeSemaUnknownType,
		Message: fmt.Sprintf("unknown type '%s' referenced in '%s'", name, d.Name),
		Span:    declSpan(filename, d),
	}}
}

func tvarSet(vars []string) map[string]struct{} {
	out := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		out[v] = struct{}{}
	}
	return out
}

func declSpan(filename string, d ast.Decl) diag.Span {
	return diag.Span{
		File:  filename,
		Start: diag.Position{Line: d.Line, Column: d.Column},
		End:   diag.Position{Line: d.Line, Column: d.Column},
	}
}

func defaultSpan(filename string) diag.Span {
	return diag.Span{
		File:  filename,
		Start: diag.Position{Line: 1, Column: 1},
		End:   diag.Position{Line: 1, Column: 1},
	}
}
