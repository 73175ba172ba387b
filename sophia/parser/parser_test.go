package parser

import (
	"strings"
	"testing"

	"github.com/KCHENPENGFEI/aesophia/sophia/ast"
	"github.com/KCHENPENGFEI/aesophia/sophia/diag"
)

func parseOK(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, diags := ParseFile("test.aes", []byte(src))
	if diags.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	return mod
}

func TestParseSimpleContract(t *testing.T) {
	mod := parseOK(t, `
contract Counter =
  function get() : int = state
  function tick(n : int) : int = n + 1
`)
	if len(mod.Contracts) != 1 {
		t.Fatalf("expected one contract, got %d", len(mod.Contracts))
	}
	c := mod.Contracts[0]
	if c.Name != "Counter" {
		t.Fatalf("unexpected contract name: %q", c.Name)
	}
	if len(c.Decls) != 2 {
		t.Fatalf("expected two declarations, got %d", len(c.Decls))
	}
	tick := c.Decls[1]
	if tick.Kind != ast.DeclFunction || tick.Name != "tick" {
		t.Fatalf("unexpected declaration: %+v", tick)
	}
	if len(tick.Params) != 1 || tick.Params[0].Name != "n" {
		t.Fatalf("unexpected parameters: %+v", tick.Params)
	}
	if ast.RenderType(tick.Return) != "int" {
		t.Fatalf("unexpected return type: %q", ast.RenderType(tick.Return))
	}
}

func TestParseDeclPositions(t *testing.T) {
	mod := parseOK(t, "contract C =\n  function f() : int = 1\n  function g() : int = 2\n")
	decls := mod.Contracts[0].Decls
	if decls[0].Line != 2 || decls[0].Column != 3 {
		t.Fatalf("unexpected position for f: %d:%d", decls[0].Line, decls[0].Column)
	}
	if decls[1].Line != 3 || decls[1].Column != 3 {
		t.Fatalf("unexpected position for g: %d:%d", decls[1].Line, decls[1].Column)
	}
}

func TestParseTypeAliasDecl(t *testing.T) {
	mod := parseOK(t, `
contract C =
  type pair('a, 'b) = ('a, 'b)
`)
	d := mod.Contracts[0].Decls[0]
	if d.Kind != ast.DeclType || d.Name != "pair" {
		t.Fatalf("unexpected declaration: %+v", d)
	}
	if len(d.TypeVars) != 2 || d.TypeVars[0] != "'a" || d.TypeVars[1] != "'b" {
		t.Fatalf("unexpected type vars: %v", d.TypeVars)
	}
	if _, ok := d.Def.(*ast.AliasType); !ok {
		t.Fatalf("type declaration body is not an alias: %T", d.Def)
	}
	if ast.RenderType(d.Def) != "('a,'b)" {
		t.Fatalf("unexpected alias body: %q", ast.RenderType(d.Def))
	}
}

func TestParseDatatypeDecl(t *testing.T) {
	mod := parseOK(t, `
contract C =
  datatype mode('a) = Off | Blink(int, 'a)
`)
	d := mod.Contracts[0].Decls[0]
	if d.Kind != ast.DeclDatatype || d.Name != "mode" {
		t.Fatalf("unexpected declaration: %+v", d)
	}
	v, ok := d.Def.(*ast.VariantType)
	if !ok {
		t.Fatalf("datatype body is not a variant: %T", d.Def)
	}
	if len(v.Cons) != 2 || v.Cons[0].Tag != "Off" || v.Cons[1].Tag != "Blink" {
		t.Fatalf("unexpected constructors: %+v", v.Cons)
	}
	if len(v.Cons[0].Args) != 0 || len(v.Cons[1].Args) != 2 {
		t.Fatalf("unexpected constructor arities: %+v", v.Cons)
	}
}

func TestParseParenGroupingIsNotTuple(t *testing.T) {
	mod := parseOK(t, `
contract C =
  type one = (int)
  type two = (int,bool)
`)
	decls := mod.Contracts[0].Decls
	if got := ast.RenderType(decls[0].Def); got != "int" {
		t.Fatalf("grouping collapsed wrong: %q", got)
	}
	if got := ast.RenderType(decls[1].Def); got != "(int,bool)" {
		t.Fatalf("tuple render: %q", got)
	}
}

func TestParseRecordAndApplicationTypes(t *testing.T) {
	mod := parseOK(t, `
contract C =
  function f(m : map(string, {x : int, y : int})) : list(int) = m
`)
	p := mod.Contracts[0].Decls[0].Params[0]
	if got := ast.RenderType(p.Type); got != "map(string,{x : int,y : int})" {
		t.Fatalf("parameter type render: %q", got)
	}
}

func TestParseExpressionForms(t *testing.T) {
	parseOK(t, `
contract C =
  function f(x : int, y : int) : int =
    if (x > 0 && !done) g(x).next else -(x + y * 2) ^ base.limit
`)
}

func TestParseEmptyInputDiagnostic(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n"} {
		_, diags := ParseFile("test.aes", []byte(src))
		if len(diags) != 1 {
			t.Fatalf("src %q: expected one diagnostic, got %v", src, diags)
		}
		if diags[0].Code != diag.CodeScanNoInput {
			t.Fatalf("src %q: unexpected code %s", src, diags[0].Code)
		}
		if diags[0].Span.Start.Line != 0 || diags[0].Span.Start.Column != 0 {
			t.Fatalf("src %q: no-input diagnostic must carry a zero position, got %+v", src, diags[0].Span)
		}
	}
}

func TestParseUnterminatedStringDiagnostic(t *testing.T) {
	src := "contract C =\n  function f() : string = \"oops"
	_, diags := ParseFile("test.aes", []byte(src))
	if !diags.HasErrors() {
		t.Fatalf("expected diagnostics")
	}
	d := diags[0]
	if d.Code != diag.CodeScanUnterminated {
		t.Fatalf("unexpected first diagnostic code: %s", d.Code)
	}
	if d.Span.Start.Line != 2 || d.Span.Start.Column != 27 {
		t.Fatalf("unterminated diagnostic must point at the opening quote, got %d:%d",
			d.Span.Start.Line, d.Span.Start.Column)
	}
}

func TestParseIllegalCharacterDiagnostic(t *testing.T) {
	_, diags := ParseFile("test.aes", []byte("contract C =\n  function f() : int = 1 ?\n"))
	var found bool
	for _, d := range diags {
		if d.Code == diag.CodeScanIllegal && strings.Contains(d.Message, "?") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an illegal-character diagnostic, got %v", diags)
	}
}

func TestParseUnsupportedMemberDiagnostic(t *testing.T) {
	src := `
contract C =
  let x = 1
  function f() : int = x
`
	mod, diags := ParseFile("test.aes", []byte(src))
	var found bool
	for _, d := range diags {
		if d.Code == diag.CodeParseUnsupported {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unsupported-member diagnostic, got %v", diags)
	}
	// Recovery resumes at the next member keyword.
	if len(mod.Contracts) != 1 || len(mod.Contracts[0].Decls) != 1 {
		t.Fatalf("expected recovery to keep the following function, got %+v", mod)
	}
}

func TestParseMissingReturnType(t *testing.T) {
	_, diags := ParseFile("test.aes", []byte("contract C =\n  function f() = 1\n"))
	if !diags.HasErrors() {
		t.Fatalf("expected diagnostics for missing return type")
	}
	if diags[0].Code != diag.CodeParseUnexpected {
		t.Fatalf("unexpected code: %s", diags[0].Code)
	}
}

func TestParseMultipleContracts(t *testing.T) {
	mod := parseOK(t, `
contract A =
  function f() : int = 1
contract B =
  function g() : bool = true
`)
	if len(mod.Contracts) != 2 {
		t.Fatalf("expected two contracts, got %d", len(mod.Contracts))
	}
	if mod.Contracts[0].Name != "A" || mod.Contracts[1].Name != "B" {
		t.Fatalf("unexpected contract names: %+v", mod.Contracts)
	}
}

func TestParseTopLevelGarbageRecovers(t *testing.T) {
	src := "junk tokens here\ncontract C =\n  function f() : int = 1\n"
	mod, diags := ParseFile("test.aes", []byte(src))
	if !diags.HasErrors() {
		t.Fatalf("expected diagnostics for leading garbage")
	}
	if len(mod.Contracts) != 1 || mod.Contracts[0].Name != "C" {
		t.Fatalf("expected recovery to parse the trailing contract, got %+v", mod)
	}
}
