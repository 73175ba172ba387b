package aesophia

import (
	"github.com/KCHENPENGFEI/aesophia/sophia/ast"
	"github.com/KCHENPENGFEI/aesophia/sophia/parser"
	"github.com/KCHENPENGFEI/aesophia/sophia/sema"
)

// ParseContractModule parses .aes source into a syntax tree.
func ParseContractModule(source []byte, name string) (*ast.Module, error) {
	mod, diags := parser.ParseFile(name, source)
	if diags.HasErrors() {
		return nil, translateParseFailure(diags)
	}
	return mod, nil
}

// CheckContractModule parses and semantically checks .aes source. Checker
// diagnostics are returned unmodified.
func CheckContractModule(source []byte, name string) (*sema.TypedModule, error) {
	mod, err := ParseContractModule(source, name)
	if err != nil {
		return nil, err
	}
	typed, diags := sema.Check(name, mod, sema.Options{})
	if diags.HasErrors() {
		return nil, diags
	}
	return typed, nil
}
