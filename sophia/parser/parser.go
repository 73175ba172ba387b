package parser

import (
	"bytes"
	"fmt"

	"github.com/KCHENPENGFEI/aesophia/sophia/ast"
	"github.com/KCHENPENGFEI/aesophia/sophia/diag"
	"github.com/KCHENPENGFEI/aesophia/sophia/lexer"
)

type Parser struct {
	filename string
	lex      *lexer.Lexer
	cur      lexer.Token
	diags    diag.Diagnostics
}

// ParseFile parses .aes source into a syntax tree. Scan-level failures
// (illegal bytes, unterminated strings) surface as diagnostics carrying the
// offending position; a source with no tokens at all yields a dedicated
// no-input diagnostic without a usable position.
func ParseFile(filename string, src []byte) (*ast.Module, diag.Diagnostics) {
	if len(bytes.TrimSpace(src)) == 0 {
		return &ast.Module{}, diag.Diagnostics{{
			Code:    diag.CodeScanNoInput,
			Message: "no tokens in input",
			Span:    diag.Span{File: filename},
		}}
	}
	p := &Parser{
		filename: filename,
		lex:      lexer.New(src),
	}
	p.next()
	mod := p.parseModule()
	return mod, p.diags
}

func (p *Parser) parseModule() *ast.Module {
	mod := &ast.Module{}
	for p.cur.Type != lexer.TokenEOF {
		if p.cur.Type != lexer.TokenKwContract {
			p.addDiag(diag.Diagnostic{
				Code:    diag.CodeParseUnexpected,
				Message: fmt.Sprintf("expected 'contract' declaration, found '%s'", p.cur.Literal),
				Span:    p.span(p.cur),
			})
			p.syncUntil(lexer.TokenKwContract)
			continue
		}
		c := p.parseContractDecl()
		if c != nil {
			mod.Contracts = append(mod.Contracts, *c)
		}
	}
	return mod
}

func (p *Parser) parseContractDecl() *ast.ContractDecl {
	kw := p.cur
	if !p.expect(lexer.TokenKwContract, "expected 'contract'") {
		return nil
	}
	nameTok := p.cur
	if p.cur.Type != lexer.TokenCon && p.cur.Type != lexer.TokenIdent {
		p.addDiag(diag.Diagnostic{
			Code:    diag.CodeParseUnexpected,
			Message: "expected contract name",
			Span:    p.span(p.cur),
		})
		return nil
	}
	p.next()
	if !p.expect(lexer.TokenAssign, "expected '=' after contract name") {
		return nil
	}

	c := &ast.ContractDecl{
		Name:   nameTok.Literal,
		Line:   kw.Start.Line,
		Column: kw.Start.Column,
	}
	for p.cur.Type != lexer.TokenKwContract && p.cur.Type != lexer.TokenEOF {
		p.parseContractMember(c)
	}
	return c
}

func (p *Parser) parseContractMember(c *ast.ContractDecl) {
	switch p.cur.Type {
	case lexer.TokenKwFunction:
		d := p.parseFunctionDecl()
		if d != nil {
			c.Decls = append(c.Decls, *d)
		}
	case lexer.TokenKwType:
		d := p.parseTypeDecl()
		if d != nil {
			c.Decls = append(c.Decls, *d)
		}
	case lexer.TokenKwDatatype:
		d := p.parseDatatypeDecl()
		if d != nil {
			c.Decls = append(c.Decls, *d)
		}
	default:
		p.addDiag(diag.Diagnostic{
			Code:    diag.CodeParseUnsupported,
			Message: fmt.Sprintf("unsupported contract member starting at token '%s'", p.cur.Literal),
			Span:    p.span(p.cur),
		})
		p.syncMember()
	}
}

func (p *Parser) parseFunctionDecl() *ast.Decl {
	kw := p.cur
	if !p.expect(lexer.TokenKwFunction, "expected 'function'") {
		return nil
	}
	nameTok := p.cur
	if !p.expect(lexer.TokenIdent, "expected function name") {
		return nil
	}
	params, ok := p.parseFieldList()
	if !ok {
		return nil
	}
	if !p.expect(lexer.TokenColon, "expected ':' before function return type") {
		return nil
	}
	ret, ok := p.parseType()
	if !ok {
		return nil
	}
	if !p.expect(lexer.TokenAssign, "expected '=' before function body") {
		return nil
	}
	body, ok := p.parseExpression()
	if !ok {
		return nil
	}
	return &ast.Decl{
		Kind:   ast.DeclFunction,
		Name:   nameTok.Literal,
		Line:   kw.Start.Line,
		Column: kw.Start.Column,
		Params: params,
		Return: ret,
		Body:   body,
	}
}

func (p *Parser) parseTypeDecl() *ast.Decl {
	kw := p.cur
	if !p.expect(lexer.TokenKwType, "expected 'type'") {
		return nil
	}
	nameTok := p.cur
	if !p.expect(lexer.TokenIdent, "expected type name") {
		return nil
	}
	vars, ok := p.parseTypeVarList()
	if !ok {
		return nil
	}
	if !p.expect(lexer.TokenAssign, "expected '=' after type name") {
		return nil
	}
	body, ok := p.parseType()
	if !ok {
		return nil
	}
	return &ast.Decl{
		Kind:     ast.DeclType,
		Name:     nameTok.Literal,
		Line:     kw.Start.Line,
		Column:   kw.Start.Column,
		TypeVars: vars,
		Def:      &ast.AliasType{Type: body},
	}
}

func (p *Parser) parseDatatypeDecl() *ast.Decl {
	kw := p.cur
	if !p.expect(lexer.TokenKwDatatype, "expected 'datatype'") {
		return nil
	}
	nameTok := p.cur
	if !p.expect(lexer.TokenIdent, "expected datatype name") {
		return nil
	}
	vars, ok := p.parseTypeVarList()
	if !ok {
		return nil
	}
	if !p.expect(lexer.TokenAssign, "expected '=' after datatype name") {
		return nil
	}

	variant := &ast.VariantType{}
	for {
		con, ok := p.parseConstructor()
		if !ok {
			return nil
		}
		variant.Cons = append(variant.Cons, *con)
		if p.cur.Type == lexer.TokenBar {
			p.next()
			continue
		}
		break
	}
	return &ast.Decl{
		Kind:     ast.DeclDatatype,
		Name:     nameTok.Literal,
		Line:     kw.Start.Line,
		Column:   kw.Start.Column,
		TypeVars: vars,
		Def:      variant,
	}
}

func (p *Parser) parseConstructor() (*ast.ConstrType, bool) {
	tagTok := p.cur
	if !p.expect(lexer.TokenCon, "expected constructor name") {
		return nil, false
	}
	con := &ast.ConstrType{Tag: tagTok.Literal}
	if p.cur.Type == lexer.TokenLParen {
		p.next()
		if p.cur.Type != lexer.TokenRParen {
			for {
				arg, ok := p.parseType()
				if !ok {
					return nil, false
				}
				con.Args = append(con.Args, arg)
				if p.cur.Type == lexer.TokenComma {
					p.next()
					continue
				}
				break
			}
		}
		if !p.expect(lexer.TokenRParen, "expected ')' after constructor arguments") {
			return nil, false
		}
	}
	return con, true
}

func (p *Parser) parseTypeVarList() ([]string, bool) {
	if p.cur.Type != lexer.TokenLParen {
		return nil, true
	}
	p.next()
	var vars []string
	if p.cur.Type != lexer.TokenRParen {
		for {
			tok := p.cur
			if !p.expect(lexer.TokenTVar, "expected type variable") {
				return nil, false
			}
			vars = append(vars, tok.Literal)
			if p.cur.Type == lexer.TokenComma {
				p.next()
				continue
			}
			break
		}
	}
	if !p.expect(lexer.TokenRParen, "expected ')' after type parameters") {
		return nil, false
	}
	return vars, true
}

func (p *Parser) parseFieldList() ([]ast.FieldDecl, bool) {
	if !p.expect(lexer.TokenLParen, "expected '('") {
		return nil, false
	}
	fields := []ast.FieldDecl{}
	if p.cur.Type == lexer.TokenRParen {
		p.next()
		return fields, true
	}
	for {
		nameTok := p.cur
		if !p.expect(lexer.TokenIdent, "expected parameter name") {
			return nil, false
		}
		if !p.expect(lexer.TokenColon, "expected ':' after parameter name") {
			return nil, false
		}
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fields = append(fields, ast.FieldDecl{Name: nameTok.Literal, Type: typ})
		if p.cur.Type == lexer.TokenComma {
			p.next()
			continue
		}
		break
	}
	if !p.expect(lexer.TokenRParen, "expected ')'") {
		return nil, false
	}
	return fields, true
}

// parseType parses a type expression:
//
//	type := 'a | name | Con | name '(' type,... ')'
//	      | '(' type,... ')' | '{' name ':' type, ... '}'
//
// A single parenthesized type is grouping, not a one-element tuple.
func (p *Parser) parseType() (ast.Type, bool) {
	switch p.cur.Type {
	case lexer.TokenTVar:
		tok := p.cur
		p.next()
		return &ast.TVar{Name: tok.Literal}, true
	case lexer.TokenCon:
		tok := p.cur
		p.next()
		return &ast.TypeCon{Name: tok.Literal}, true
	case lexer.TokenIdent:
		tok := p.cur
		p.next()
		if p.cur.Type != lexer.TokenLParen {
			return &ast.TypeId{Name: tok.Literal}, true
		}
		p.next()
		app := &ast.AppType{Id: tok.Literal}
		if p.cur.Type != lexer.TokenRParen {
			for {
				arg, ok := p.parseType()
				if !ok {
					return nil, false
				}
				app.Args = append(app.Args, arg)
				if p.cur.Type == lexer.TokenComma {
					p.next()
					continue
				}
				break
			}
		}
		if !p.expect(lexer.TokenRParen, "expected ')' after type arguments") {
			return nil, false
		}
		return app, true
	case lexer.TokenLParen:
		p.next()
		tuple := &ast.TupleType{}
		if p.cur.Type != lexer.TokenRParen {
			for {
				elem, ok := p.parseType()
				if !ok {
					return nil, false
				}
				tuple.Elems = append(tuple.Elems, elem)
				if p.cur.Type == lexer.TokenComma {
					p.next()
					continue
				}
				break
			}
		}
		if !p.expect(lexer.TokenRParen, "expected ')' to close tuple type") {
			return nil, false
		}
		if len(tuple.Elems) == 1 {
			return tuple.Elems[0], true
		}
		return tuple, true
	case lexer.TokenLBrace:
		p.next()
		rec := &ast.RecordType{}
		if p.cur.Type != lexer.TokenRBrace {
			for {
				nameTok := p.cur
				if !p.expect(lexer.TokenIdent, "expected record field name") {
					return nil, false
				}
				if !p.expect(lexer.TokenColon, "expected ':' after record field name") {
					return nil, false
				}
				ft, ok := p.parseType()
				if !ok {
					return nil, false
				}
				rec.Fields = append(rec.Fields, ast.FieldType{Name: nameTok.Literal, Type: ft})
				if p.cur.Type == lexer.TokenComma {
					p.next()
					continue
				}
				break
			}
		}
		if !p.expect(lexer.TokenRBrace, "expected '}' to close record type") {
			return nil, false
		}
		return rec, true
	default:
		p.addDiag(diag.Diagnostic{
			Code:    diag.CodeParseUnexpected,
			Message: fmt.Sprintf("expected type, found '%s'", p.cur.Literal),
			Span:    p.span(p.cur),
		})
		return nil, false
	}
}

const (
	exprPrecLowest = 1
	exprPrecOr     = 2
	exprPrecAnd    = 3
	exprPrecCmp    = 4
	exprPrecAdd    = 5
	exprPrecMul    = 6
	exprPrecPow    = 7
	exprPrecPrefix = 8
)

func (p *Parser) parseExpression() (*ast.Expr, bool) {
	return p.parseExprPrec(exprPrecLowest)
}

func (p *Parser) parseExprPrec(minPrec int) (*ast.Expr, bool) {
	left, ok := p.parsePrefixExpr()
	if !ok {
		return nil, false
	}

	for {
		if p.cur.Type == lexer.TokenLParen || p.cur.Type == lexer.TokenDot {
			left, ok = p.parsePostfixExpr(left)
			if !ok {
				return nil, false
			}
			continue
		}

		prec := infixPrecedence(p.cur.Type)
		if prec < minPrec || prec == 0 {
			break
		}

		opTok := p.cur
		p.next()
		right, ok := p.parseExprPrec(prec + 1)
		if !ok {
			return nil, false
		}
		left = &ast.Expr{
			Kind:  "binary",
			Op:    opTok.Literal,
			Left:  left,
			Right: right,
		}
	}
	return left, true
}

func (p *Parser) parsePrefixExpr() (*ast.Expr, bool) {
	switch p.cur.Type {
	case lexer.TokenIdent:
		tok := p.cur
		p.next()
		return &ast.Expr{Kind: "ident", Value: tok.Literal}, true
	case lexer.TokenCon:
		tok := p.cur
		p.next()
		return &ast.Expr{Kind: "con", Value: tok.Literal}, true
	case lexer.TokenNumber:
		tok := p.cur
		p.next()
		return &ast.Expr{Kind: "number", Value: tok.Literal}, true
	case lexer.TokenString:
		tok := p.cur
		p.next()
		return &ast.Expr{Kind: "string", Value: tok.Literal}, true
	case lexer.TokenLParen:
		p.next()
		inner, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		if !p.expect(lexer.TokenRParen, "expected ')' to close expression") {
			return nil, false
		}
		return &ast.Expr{Kind: "paren", Left: inner}, true
	case lexer.TokenMinus, lexer.TokenBang:
		op := p.cur.Literal
		p.next()
		right, ok := p.parseExprPrec(exprPrecPrefix)
		if !ok {
			return nil, false
		}
		return &ast.Expr{Kind: "unary", Op: op, Right: right}, true
	case lexer.TokenKwIf:
		return p.parseIfExpr()
	default:
		p.addDiag(diag.Diagnostic{
			Code:    diag.CodeParseUnexpected,
			Message: fmt.Sprintf("unexpected token '%s' in expression", p.cur.Literal),
			Span:    p.span(p.cur),
		})
		return nil, false
	}
}

func (p *Parser) parseIfExpr() (*ast.Expr, bool) {
	if !p.expect(lexer.TokenKwIf, "expected 'if'") {
		return nil, false
	}
	if !p.expect(lexer.TokenLParen, "expected '(' after 'if'") {
		return nil, false
	}
	cond, ok := p.parseExpression()
	if !ok {
		return nil, false
	}
	if !p.expect(lexer.TokenRParen, "expected ')' after if condition") {
		return nil, false
	}
	then, ok := p.parseExpression()
	if !ok {
		return nil, false
	}
	if !p.expect(lexer.TokenKwElse, "expected 'else' in if expression") {
		return nil, false
	}
	alt, ok := p.parseExpression()
	if !ok {
		return nil, false
	}
	return &ast.Expr{Kind: "if", Cond: cond, Then: then, Else: alt}, true
}

func (p *Parser) parsePostfixExpr(left *ast.Expr) (*ast.Expr, bool) {
	switch p.cur.Type {
	case lexer.TokenLParen:
		p.next()
		args := []*ast.Expr{}
		if p.cur.Type != lexer.TokenRParen {
			for {
				arg, ok := p.parseExpression()
				if !ok {
					return nil, false
				}
				args = append(args, arg)
				if p.cur.Type == lexer.TokenComma {
					p.next()
					continue
				}
				break
			}
		}
		if !p.expect(lexer.TokenRParen, "expected ')' after argument list") {
			return nil, false
		}
		return &ast.Expr{Kind: "call", Callee: left, Args: args}, true
	case lexer.TokenDot:
		p.next()
		memberTok := p.cur
		if !p.expect(lexer.TokenIdent, "expected member name after '.'") {
			return nil, false
		}
		return &ast.Expr{Kind: "member", Object: left, Member: memberTok.Literal}, true
	default:
		return left, true
	}
}

func infixPrecedence(tt lexer.Type) int {
	switch tt {
	case lexer.TokenOrOr:
		return exprPrecOr
	case lexer.TokenAndAnd:
		return exprPrecAnd
	case lexer.TokenEq, lexer.TokenNe, lexer.TokenLT, lexer.TokenLE, lexer.TokenGT, lexer.TokenGE:
		return exprPrecCmp
	case lexer.TokenPlus, lexer.TokenMinus:
		return exprPrecAdd
	case lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		return exprPrecMul
	case lexer.TokenCaret:
		return exprPrecPow
	default:
		return 0
	}
}

func (p *Parser) syncMember() {
	for p.cur.Type != lexer.TokenEOF {
		switch p.cur.Type {
		case lexer.TokenKwFunction, lexer.TokenKwType, lexer.TokenKwDatatype, lexer.TokenKwContract:
			return
		}
		p.next()
	}
}

func (p *Parser) expect(tt lexer.Type, message string) bool {
	if p.cur.Type != tt {
		p.addDiag(diag.Diagnostic{
			Code:    diag.CodeParseUnexpected,
			Message: message,
			Span:    p.span(p.cur),
		})
		return false
	}
	p.next()
	return true
}

func (p *Parser) syncUntil(types ...lexer.Type) {
	for p.cur.Type != lexer.TokenEOF {
		for _, tt := range types {
			if p.cur.Type == tt {
				return
			}
		}
		p.next()
	}
}

// next fetches the following token, turning scanner-level failures into
// diagnostics so parsing always sees a well-formed stream.
func (p *Parser) next() {
	for {
		p.cur = p.lex.Next()
		switch p.cur.Type {
		case lexer.TokenUnterminated:
			p.addDiag(diag.Diagnostic{
				Code:    diag.CodeScanUnterminated,
				Message: "unterminated string literal",
				Span:    p.span(p.cur),
			})
			continue
		case lexer.TokenIllegal:
			p.addDiag(diag.Diagnostic{
				Code:    diag.CodeScanIllegal,
				Message: fmt.Sprintf("illegal character %q", p.cur.Literal),
				Span:    p.span(p.cur),
			})
			continue
		}
		return
	}
}

func (p *Parser) addDiag(d diag.Diagnostic) {
	p.diags = append(p.diags, d)
}

func (p *Parser) span(tok lexer.Token) diag.Span {
	return diag.Span{
		File: p.filename,
		Start: diag.Position{
			Line:   tok.Start.Line,
			Column: tok.Start.Column,
		},
		End: diag.Position{
			Line:   tok.End.Line,
			Column: tok.End.Column,
		},
	}
}
