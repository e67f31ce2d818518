// Package parser implements a recursive-descent parser that turns a
// token stream from internal/lexer into the internal/ast program
// representation.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/lexer"
)

// Parser consumes tokens from a Lexer one at a time, keeping a single
// token of lookahead (curToken/peekToken), in the classic
// recursive-descent shape.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  lexer.Token
	peekToken lexer.Token
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns accumulated parse errors, in source order.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) addErrorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s (line %d, column %d)", msg, p.curToken.Pos.Line, p.curToken.Pos.Column))
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expect checks the current token's type, records an error and
// returns false if it doesn't match, and otherwise advances past it.
func (p *Parser) expect(t lexer.TokenType) bool {
	if !p.curIs(t) {
		p.addErrorf("expected %s, got %s %q", t, p.curToken.Type, p.curToken.Literal)
		return false
	}
	p.nextToken()
	return true
}

// ParseProgram parses a whole source file: one or more `define`
// bindings.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.DEFINE) {
			p.addErrorf("expected 'define', got %s %q", p.curToken.Type, p.curToken.Literal)
			p.nextToken()
			continue
		}
		binding := p.parseTopLevelBinding()
		if binding != nil {
			program.Bindings = append(program.Bindings, binding)
		}
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}

	return program
}

// parseTopLevelBinding parses `define name = lambda`.
func (p *Parser) parseTopLevelBinding() *ast.Binding {
	pos := p.curToken.Pos
	if !p.expect(lexer.DEFINE) {
		return nil
	}
	return p.parseBindingBody(pos)
}

// parseLetBinding parses `name = lambda`, the form bindings take
// inside a let/letrec group (no leading `define` keyword there).
func (p *Parser) parseLetBinding() *ast.Binding {
	pos := p.curToken.Pos
	return p.parseBindingBody(pos)
}

func (p *Parser) parseBindingBody(pos lexer.Position) *ast.Binding {
	if !p.curIs(lexer.IDENT) {
		p.addErrorf("expected binding name, got %s %q", p.curToken.Type, p.curToken.Literal)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	if !p.expect(lexer.ASSIGN) {
		return nil
	}

	lambda := p.parseLambdaForm()
	if lambda == nil {
		return nil
	}

	return &ast.Binding{Position: pos, Name: name, Lambda: lambda}
}

// parseLambdaForm parses `{freeVars} (\u|\n) {boundVars} -> expr`.
func (p *Parser) parseLambdaForm() *ast.LambdaForm {
	pos := p.curToken.Pos

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	freeVars := p.parseIdentListUntilRBrace()
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	var flag ast.UpdateFlag
	switch p.curToken.Type {
	case lexer.UPDATE:
		flag = ast.Update
		p.nextToken()
	case lexer.NOUPDATE:
		flag = ast.NoUpdate
		p.nextToken()
	default:
		p.addErrorf("expected \\u or \\n, got %s %q", p.curToken.Type, p.curToken.Literal)
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	boundVars := p.parseIdentListUntilRBrace()
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	if !p.expect(lexer.ARROW) {
		return nil
	}

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	return &ast.LambdaForm{
		Position:   pos,
		FreeVars:   freeVars,
		UpdateFlag: flag,
		BoundVars:  boundVars,
		Body:       body,
	}
}

// parseIdentListUntilRBrace parses a comma-separated list of bare
// identifiers, stopping at (without consuming) the closing RBRACE.
func (p *Parser) parseIdentListUntilRBrace() []string {
	var idents []string
	if p.curIs(lexer.RBRACE) {
		return idents
	}
	for {
		if !p.curIs(lexer.IDENT) {
			p.addErrorf("expected identifier, got %s %q", p.curToken.Type, p.curToken.Literal)
			return idents
		}
		idents = append(idents, p.curToken.Literal)
		p.nextToken()
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return idents
}
