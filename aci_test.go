package aesophia

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/KCHENPENGFEI/aesophia/sophia/ast"
	"github.com/KCHENPENGFEI/aesophia/sophia/diag"
)

func TestEncodeContractInterface(t *testing.T) {
	src := "contract C =\n  function f(x : int, y : bool) : int = x\n"
	got, err := EncodeContractInterface([]byte(src), "c.aes")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	want := `{"contract":{"name":"C","type_defs":[],"functions":[{"name":"f","arguments":[{"name":"x","type":"int"},{"name":"y","type":"bool"}],"type":"int"}]}}`
	if string(got) != want {
		t.Fatalf("unexpected ACI:\n got: %s\nwant: %s", got, want)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	src := `
contract Registry =
  type entry = {owner : address, ttl : int}
  datatype lookup = NotFound | Found(entry)
  function get(name : string) : lookup = find(name)
`
	a, err := EncodeContractInterface([]byte(src), "r.aes")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	b, err := EncodeContractInterface([]byte(src), "r.aes")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("encoding is not byte-stable:\n%s\n%s", a, b)
	}
}

func TestEncodeTypeDefsAndFunctions(t *testing.T) {
	src := `
contract Rally =
  function run(m : mode) : pair(int, string) = go(m)
  type pair('a, 'b) = ('a, 'b)
  datatype mode = Off | Blink(int)
`
	got, err := EncodeContractInterface([]byte(src), "rally.aes")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	want := `{"contract":{"name":"Rally","type_defs":[` +
		`{"name":"pair","vars":[{"name":"'a"},{"name":"'b"}],"typedef":"('a,'b)"},` +
		`{"name":"mode","vars":[],"typedef":"Off() | Blink(int)"}],` +
		`"functions":[{"name":"run","arguments":[{"name":"m","type":"mode"}],"type":"pair(int,string)"}]}}`
	if string(got) != want {
		t.Fatalf("unexpected ACI:\n got: %s\nwant: %s", got, want)
	}
}

func TestEncodeEmptyContractEmitsEmptyLists(t *testing.T) {
	got, err := EncodeContractInterface([]byte("contract Empty =\n"), "e.aes")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	want := `{"contract":{"name":"Empty","type_defs":[],"functions":[]}}`
	if string(got) != want {
		t.Fatalf("unexpected ACI: %s", got)
	}
}

func TestEncodeTakesFirstContractOnly(t *testing.T) {
	src := `
contract First =
  function f() : int = 1
contract Second =
  function g() : bool = true
`
	got, err := EncodeContractInterface([]byte(src), "multi.aes")
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	var root map[string]any
	if err := json.Unmarshal(got, &root); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	contract := root["contract"].(map[string]any)
	if contract["name"] != "First" {
		t.Fatalf("expected first contract, got %v", contract["name"])
	}
	if strings.Contains(string(got), "Second") {
		t.Fatalf("second contract leaked into the ACI: %s", got)
	}
}

func TestSplitContractDeclsSortsByPosition(t *testing.T) {
	c := &ast.ContractDecl{
		Name: "C",
		Decls: []ast.Decl{
			{Kind: ast.DeclFunction, Name: "late", Line: 9, Column: 3},
			{Kind: ast.DeclType, Name: "t2", Line: 4, Column: 3, Def: &ast.AliasType{Type: &ast.TypeId{Name: "int"}}},
			{Kind: ast.DeclFunction, Name: "early", Line: 2, Column: 3},
			{Kind: ast.DeclType, Name: "t1", Line: 3, Column: 3, Def: &ast.AliasType{Type: &ast.TypeId{Name: "bool"}}},
		},
	}
	typeDecls, funcDecls := splitContractDecls(c)
	if typeDecls[0].Name != "t1" || typeDecls[1].Name != "t2" {
		t.Fatalf("type declarations out of order: %+v", typeDecls)
	}
	if funcDecls[0].Name != "early" || funcDecls[1].Name != "late" {
		t.Fatalf("function declarations out of order: %+v", funcDecls)
	}
}

func TestSortDeclsByPositionIsStable(t *testing.T) {
	ds := []ast.Decl{
		{Kind: ast.DeclFunction, Name: "a", Line: 5, Column: 3},
		{Kind: ast.DeclFunction, Name: "b", Line: 5, Column: 3},
		{Kind: ast.DeclFunction, Name: "c", Line: 5, Column: 3},
	}
	sortDeclsByPosition(ds)
	if ds[0].Name != "a" || ds[1].Name != "b" || ds[2].Name != "c" {
		t.Fatalf("equal-position declarations reordered: %+v", ds)
	}
}

func TestEncodeParseErrorCarriesPosition(t *testing.T) {
	src := "contract C =\n  function f() : string = \"oops"
	_, err := EncodeContractInterface([]byte(src), "c.aes")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	want := "line 2, column 27: unterminated string literal"
	if perr.Message != want {
		t.Fatalf("unexpected message:\n got: %q\nwant: %q", perr.Message, want)
	}
}

func TestEncodeNoInputError(t *testing.T) {
	for _, src := range []string{"", "  \n\t"} {
		_, err := EncodeContractInterface([]byte(src), "empty.aes")
		perr, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("src %q: expected *ParseError, got %T", src, err)
		}
		if perr.Message != "line 0, column 0: no tokens in input" {
			t.Fatalf("src %q: unexpected message %q", src, perr.Message)
		}
	}
}

func TestEncodeIllegalCharacterError(t *testing.T) {
	_, err := EncodeContractInterface([]byte("contract C =\n  function f() : int = #\n"), "c.aes")
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if !strings.HasPrefix(perr.Message, "line 2, column 24: ") {
		t.Fatalf("unexpected message: %q", perr.Message)
	}
	if !strings.Contains(perr.Message, "illegal character") {
		t.Fatalf("unexpected message: %q", perr.Message)
	}
}

func TestEncodeCheckerDiagnosticsPropagateUnmodified(t *testing.T) {
	src := "contract C =\n  function f(x : flonum) : int = x\n"
	_, err := EncodeContractInterface([]byte(src), "c.aes")
	if err == nil {
		t.Fatalf("expected checker error")
	}
	diags, ok := err.(diag.Diagnostics)
	if !ok {
		t.Fatalf("checker failures must surface as diag.Diagnostics, got %T: %v", err, err)
	}
	if diags[0].Code != diag.CodeSemaUnknownType {
		t.Fatalf("unexpected diagnostic: %v", diags[0])
	}
}

func TestTranslateAmbiguousParseFailure(t *testing.T) {
	ds := diag.Diagnostics{{
		Code:    diag.CodeParseAmbiguous,
		Message: "ambiguous declaration",
		Span:    diag.Span{File: "c.aes", Start: diag.Position{Line: 3, Column: 7}},
		Notes:   []string{"as a tuple type", "as grouping"},
	}}
	perr := translateParseFailure(ds)
	want := "line 3, column 7: ambiguous declaration [as a tuple type, as grouping]"
	if perr.Message != want {
		t.Fatalf("unexpected message:\n got: %q\nwant: %q", perr.Message, want)
	}
}

func TestTranslateUsesFirstDiagnostic(t *testing.T) {
	ds := diag.Diagnostics{
		{Code: diag.CodeParseUnexpected, Message: "first", Span: diag.Span{Start: diag.Position{Line: 1, Column: 2}}},
		{Code: diag.CodeParseUnexpected, Message: "second", Span: diag.Span{Start: diag.Position{Line: 4, Column: 5}}},
	}
	perr := translateParseFailure(ds)
	if perr.Message != "line 1, column 2: first" {
		t.Fatalf("unexpected message: %q", perr.Message)
	}
}
