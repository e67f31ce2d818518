package parser

import (
	"strconv"
	"unicode"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/lexer"
)

// intrinsicForOp maps the arithmetic glyphs to the intrinsic names
// the parser desugars them into. Infix arithmetic exists only as
// surface sugar: there is no Binop AST node, so the evaluator sees
// plain intrinsic applications.
var intrinsicForOp = map[lexer.TokenType]string{
	lexer.PLUS:  "plus#",
	lexer.MINUS: "minus#",
	lexer.STAR:  "times#",
	lexer.SLASH: "divide#",
}

// parseExpr parses one of the five expression forms (application,
// let, case, constructor, int), plus the atom-op-atom arithmetic
// sugar described above.
func (p *Parser) parseExpr() ast.Expression {
	switch p.curToken.Type {
	case lexer.LET, lexer.LETREC:
		return p.parseLet()
	case lexer.CASE:
		return p.parseCase()
	case lexer.INT:
		return p.parseIntOrBinopExpr()
	case lexer.IDENT:
		return p.parseIdentLedExpr()
	default:
		p.addErrorf("unexpected token %s %q in expression", p.curToken.Type, p.curToken.Literal)
		return nil
	}
}

func (p *Parser) parseIntOrBinopExpr() ast.Expression {
	pos := p.curToken.Pos
	left := p.parseIntAtom()
	if left == nil {
		return nil
	}
	if op, ok := intrinsicForOp[p.curToken.Type]; ok {
		return p.parseBinopSugar(pos, left, op)
	}
	return &ast.IntExpr{Position: pos, Value: left.(*ast.IntAtom).Value}
}

func (p *Parser) parseIdentLedExpr() ast.Expression {
	pos := p.curToken.Pos
	name := p.curToken.Literal
	p.nextToken()

	switch {
	case p.curIs(lexer.LBRACE):
		args := p.parseAtomListInBraces()
		if isConstructorName(name) {
			return &ast.ConstructorExpr{Position: pos, Name: name, Args: args}
		}
		return &ast.FnApplication{Position: pos, Fn: name, Args: args}
	default:
		left := ast.Atom(&ast.VarAtom{Position: pos, Name: name})
		if op, ok := intrinsicForOp[p.curToken.Type]; ok {
			return p.parseBinopSugar(pos, left, op)
		}
		p.addErrorf("bare identifier %q is not a valid expression; did you mean %s {}?", name, name)
		return nil
	}
}

// parseBinopSugar parses the `op right` half of `left op right`,
// building the FnApplication that `op` desugars to. Only a single
// binary operation is supported directly, since both operands must be
// atoms; chained arithmetic should be written through intermediate
// let-bindings.
func (p *Parser) parseBinopSugar(pos lexer.Position, left ast.Atom, fn string) ast.Expression {
	p.nextToken() // consume operator
	right := p.parseAtom()
	if right == nil {
		return nil
	}
	return &ast.FnApplication{Position: pos, Fn: fn, Args: []ast.Atom{left, right}}
}

func (p *Parser) parseLet() ast.Expression {
	pos := p.curToken.Pos
	isRec := p.curIs(lexer.LETREC)
	p.nextToken()

	var bindings []*ast.Binding
	for {
		b := p.parseLetBinding()
		if b == nil {
			return nil
		}
		bindings = append(bindings, b)
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expect(lexer.IN) {
		return nil
	}

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	return &ast.LetExpr{Position: pos, IsRecursive: isRec, Bindings: bindings, Body: body}
}

func (p *Parser) parseCase() ast.Expression {
	pos := p.curToken.Pos
	p.nextToken()

	scrutinee := p.parseExpr()
	if scrutinee == nil {
		return nil
	}

	if !p.expect(lexer.OF) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}

	var alts []ast.CaseAlternative
	for {
		alt := p.parseCaseAlt()
		if alt == nil {
			return nil
		}
		alts = append(alts, alt)
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expect(lexer.RBRACE) {
		return nil
	}

	return &ast.CaseExpr{Position: pos, Scrutinee: scrutinee, Alts: alts}
}

func (p *Parser) parseCaseAlt() ast.CaseAlternative {
	pos := p.curToken.Pos

	if p.curIs(lexer.INT) {
		value := p.parseIntLiteral(p.curToken.Literal)
		p.nextToken()
		if !p.expect(lexer.ARROW) {
			return nil
		}
		body := p.parseExpr()
		if body == nil {
			return nil
		}
		return &ast.IntAlt{Position: pos, Value: value, Body: body}
	}

	if !p.curIs(lexer.IDENT) {
		p.addErrorf("expected case alternative, got %s %q", p.curToken.Type, p.curToken.Literal)
		return nil
	}

	name := p.curToken.Literal
	p.nextToken()

	if p.curIs(lexer.LBRACE) {
		p.nextToken()
		vars := p.parseIdentListUntilRBrace()
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
		return &ast.ConstructorAlt{Position: pos, Con: name, Vars: vars, Body: body}
	}

	if !p.expect(lexer.ARROW) {
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		return nil
	}
	return &ast.DefaultAlt{Position: pos, Var: name, Body: body}
}

// parseAtomListInBraces parses `{ atom (, atom)* }` or `{}`, with the
// current token positioned at the opening LBRACE.
func (p *Parser) parseAtomListInBraces() []ast.Atom {
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var atoms []ast.Atom
	if p.curIs(lexer.RBRACE) {
		p.nextToken()
		return atoms
	}
	for {
		a := p.parseAtom()
		if a == nil {
			return atoms
		}
		atoms = append(atoms, a)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE)
	return atoms
}

func (p *Parser) parseAtom() ast.Atom {
	switch p.curToken.Type {
	case lexer.INT:
		return p.parseIntAtom()
	case lexer.IDENT:
		atom := &ast.VarAtom{Position: p.curToken.Pos, Name: p.curToken.Literal}
		p.nextToken()
		return atom
	default:
		p.addErrorf("expected atom, got %s %q", p.curToken.Type, p.curToken.Literal)
		return nil
	}
}

func (p *Parser) parseIntAtom() ast.Atom {
	if !p.curIs(lexer.INT) {
		p.addErrorf("expected integer literal, got %s %q", p.curToken.Type, p.curToken.Literal)
		return nil
	}
	value := p.parseIntLiteral(p.curToken.Literal)
	atom := &ast.IntAtom{Position: p.curToken.Pos, Value: value}
	p.nextToken()
	return atom
}

// parseIntLiteral converts a raw digit string into int64, reporting
// UnableToMkPrimInt as a parse error when the literal overflows. The
// lexer guarantees the input is all digits, so this can only fail on
// overflow.
func (p *Parser) parseIntLiteral(literal string) int64 {
	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		p.addErrorf("UnableToMkPrimInt: cannot parse integer literal %q", literal)
		return 0
	}
	return n
}

// isConstructorName follows the STG convention that data constructors
// (True, False, Tup, Cons) are capitalized and everything else
// (intrinsics, user functions) is not.
func isConstructorName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
