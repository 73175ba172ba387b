package sema

import (
	"testing"

	"github.com/KCHENPENGFEI/aesophia/sophia/diag"
	"github.com/KCHENPENGFEI/aesophia/sophia/parser"
)

func check(t *testing.T, src string) diag.Diagnostics {
	t.Helper()
	mod, diags := parser.ParseFile("test.aes", []byte(src))
	if diags.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	_, semaDiags := Check("test.aes", mod, Options{})
	return semaDiags
}

func wantCode(t *testing.T, diags diag.Diagnostics, code string) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("expected diagnostic %s, got %v", code, diags)
}

func TestCheckAcceptsWellFormedContract(t *testing.T) {
	diags := check(t, `
contract Registry =
  type entry = {owner : address, ttl : int}
  datatype lookup = NotFound() | Found(entry)
  function get(name : string) : lookup = find(name)
  function put(name : string, e : entry) : bool = store(name, e)
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestCheckMissingContract(t *testing.T) {
	mod, parseDiags := parser.ParseFile("test.aes", []byte("contract ="))
	if !parseDiags.HasErrors() {
		t.Fatalf("expected parse diagnostics")
	}
	_, diags := Check("test.aes", mod, Options{})
	wantCode(t, diags, diag.CodeSemaMissingContract)
}

func TestCheckDuplicateFunction(t *testing.T) {
	diags := check(t, `
contract C =
  function f() : int = 1
  function f() : int = 2
`)
	wantCode(t, diags, diag.CodeSemaDuplicateFunction)
}

func TestCheckDuplicateType(t *testing.T) {
	diags := check(t, `
contract C =
  type t = int
  type t = bool
`)
	wantCode(t, diags, diag.CodeSemaDuplicateType)
}

func TestCheckDuplicateParam(t *testing.T) {
	diags := check(t, `
contract C =
  function f(x : int, x : bool) : int = 1
`)
	wantCode(t, diags, diag.CodeSemaDuplicateParam)
}

func TestCheckDuplicateConstructorAcrossDatatypes(t *testing.T) {
	diags := check(t, `
contract C =
  datatype a = Tag(int)
  datatype b = Tag(bool)
`)
	wantCode(t, diags, diag.CodeSemaDuplicateCon)
}

func TestCheckUnknownType(t *testing.T) {
	diags := check(t, `
contract C =
  function f(x : flonum) : int = x
`)
	wantCode(t, diags, diag.CodeSemaUnknownType)
}

func TestCheckDeclaredTypeIsResolvable(t *testing.T) {
	diags := check(t, `
contract C =
  type amount = int
  function f(x : amount) : amount = x
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestCheckUnboundTypeVarInTypeDef(t *testing.T) {
	diags := check(t, `
contract C =
  type pair('a) = ('a, 'b)
`)
	wantCode(t, diags, diag.CodeSemaUnboundTypeVar)
}

func TestCheckFunctionSignatureTypeVarsQuantifyImplicitly(t *testing.T) {
	diags := check(t, `
contract C =
  function id(x : 'a) : 'a = x
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestCheckErrorsPreventTypedModule(t *testing.T) {
	mod, parseDiags := parser.ParseFile("test.aes", []byte(`
contract C =
  function f(x : flonum) : int = x
`))
	if parseDiags.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %v", parseDiags)
	}
	typed, diags := Check("test.aes", mod, Options{})
	if typed != nil {
		t.Fatalf("expected nil typed module on checker errors")
	}
	if !diags.HasErrors() {
		t.Fatalf("expected diagnostics")
	}
}
