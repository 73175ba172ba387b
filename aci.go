package aesophia

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/KCHENPENGFEI/aesophia/sophia/ast"
	"github.com/KCHENPENGFEI/aesophia/sophia/diag"
	"github.com/KCHENPENGFEI/aesophia/sophia/parser"
	"github.com/KCHENPENGFEI/aesophia/sophia/sema"
)

// ParseError is the single structured error shape for all parser failures
// surfaced through the interface encoder. Message always carries a
// "line L, column C:" prefix locating the fault in the source text.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// The ACI wire structure. Struct field order is the serialization order, so
// the declarations below are the encode-side ordered representation; the
// decoder deliberately uses generic keyed maps instead (see aci_decode.go).
type aciArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type aciFunction struct {
	Name      string   `json:"name"`
	Arguments []aciArg `json:"arguments"`
	Type      string   `json:"type"`
}

type aciTypeVar struct {
	Name string `json:"name"`
}

type aciTypeDef struct {
	Name    string       `json:"name"`
	Vars    []aciTypeVar `json:"vars"`
	TypeDef string       `json:"typedef"`
}

type aciContract struct {
	Name      string        `json:"name"`
	TypeDefs  []aciTypeDef  `json:"type_defs"`
	Functions []aciFunction `json:"functions"`
}

type aciRoot struct {
	Contract aciContract `json:"contract"`
}

// EncodeContractInterface compiles .aes source into its ACI, the JSON
// interface description of the first contract in the file. Additional
// contracts in the same file parse but are not aggregated. Parser failures
// come back as *ParseError; checker diagnostics propagate unmodified.
func EncodeContractInterface(source []byte, name string) ([]byte, error) {
	mod, diags := parser.ParseFile(name, source)
	if diags.HasErrors() {
		return nil, translateParseFailure(diags)
	}
	typed, semaDiags := sema.Check(name, mod, sema.Options{})
	if semaDiags.HasErrors() {
		return nil, semaDiags
	}
	return buildContractInterface(&typed.AST.Contracts[0])
}

func buildContractInterface(c *ast.ContractDecl) ([]byte, error) {
	typeDecls, funcDecls := splitContractDecls(c)

	out := aciRoot{Contract: aciContract{
		Name:      c.Name,
		TypeDefs:  []aciTypeDef{},
		Functions: []aciFunction{},
	}}

	for _, d := range typeDecls {
		td := aciTypeDef{
			Name:    d.Name,
			Vars:    []aciTypeVar{},
			TypeDef: ast.RenderType(d.Def),
		}
		for _, v := range d.TypeVars {
			td.Vars = append(td.Vars, aciTypeVar{Name: v})
		}
		out.Contract.TypeDefs = append(out.Contract.TypeDefs, td)
	}

	for _, d := range funcDecls {
		fn := aciFunction{
			Name:      d.Name,
			Arguments: []aciArg{},
			Type:      ast.RenderType(d.Return),
		}
		for _, p := range d.Params {
			fn.Arguments = append(fn.Arguments, aciArg{
				Name: p.Name,
				Type: ast.RenderType(p.Type),
			})
		}
		out.Contract.Functions = append(out.Contract.Functions, fn)
	}

	return json.Marshal(out)
}

// splitContractDecls partitions a contract body into type and function
// declarations, each sorted ascending by source position. The sort is
// stable: declarations from the same position keep their input order.
func splitContractDecls(c *ast.ContractDecl) (typeDecls, funcDecls []ast.Decl) {
	for _, d := range c.Decls {
		switch d.Kind {
		case ast.DeclType, ast.DeclDatatype:
			typeDecls = append(typeDecls, d)
		case ast.DeclFunction:
			funcDecls = append(funcDecls, d)
		}
	}
	sortDeclsByPosition(typeDecls)
	sortDeclsByPosition(funcDecls)
	return typeDecls, funcDecls
}

func sortDeclsByPosition(ds []ast.Decl) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Line != ds[j].Line {
			return ds[i].Line < ds[j].Line
		}
		return ds[i].Column < ds[j].Column
	})
}

// translateParseFailure maps every parser failure shape (scan error with a
// position, scan error without usable state, parse error, ambiguous parse)
// into a single ParseError. Ambiguity alternatives are stringified in full
// so grammar problems stay diagnosable from the message alone.
func translateParseFailure(ds diag.Diagnostics) *ParseError {
	if len(ds) == 0 {
		return &ParseError{Message: "line 0, column 0: unknown parse failure"}
	}
	d := ds[0]
	detail := d.Message
	if d.Code == diag.CodeParseAmbiguous && len(d.Notes) > 0 {
		detail = fmt.Sprintf("%s [%s]", detail, strings.Join(d.Notes, ", "))
	}
	return &ParseError{
		Message: fmt.Sprintf("line %d, column %d: %s", d.Span.Start.Line, d.Span.Start.Column, detail),
	}
}
