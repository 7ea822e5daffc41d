package sqlfmt

import (
	"bytes"
	"strings"
)

const indentSize = 2

var keywords = map[string]bool{
	"ALL": true, "AND": true, "AS": true, "ASC": true, "BETWEEN": true,
	"BY": true, "CASE": true, "CROSS": true, "DESC": true, "DISTINCT": true,
	"ELSE": true, "END": true, "EXCEPT": true, "EXISTS": true, "FETCH": true,
	"FIRST": true, "FROM": true, "FULL": true, "GROUP": true, "HAVING": true,
	"IN": true, "INNER": true, "INTERSECT": true, "IS": true, "JOIN": true,
	"LEFT": true, "LIKE": true, "MINUS": true, "NEXT": true, "NOT": true,
	"NULL": true, "NULLS": true, "OFFSET": true, "ON": true, "ONLY": true,
	"OR": true, "ORDER": true, "OUTER": true, "OVER": true, "PARTITION": true,
	"RIGHT": true, "ROW": true, "ROWS": true, "SELECT": true, "THEN": true,
	"TOP": true, "UNION": true, "WHEN": true, "WHERE": true, "WITH": true,
}

// listClauses put each comma-separated item on its own indented line.
var listClauses = map[string]bool{
	"SELECT":   true,
	"WHERE":    true,
	"HAVING":   true,
	"GROUP BY": true,
	"ORDER BY": true,
}

// frame is one query level. Subqueries push a new frame.
type frame struct {
	base     int // depth of this level's clause keywords
	outer    int // depth to restore when the subquery closes
	parens   int // open non-subquery parentheses
	clause   string
	between  bool // a BETWEEN is waiting for its AND
	subquery bool
}

// Printer re-flows a token stream.
type Printer struct {
	tokens      []Token
	idx         int
	output      *bytes.Buffer
	depth       int
	atLineStart bool
	frames      []*frame

	prev        Token
	prevKeyword bool
	prevUnary   bool
}

func newPrinter(tokens []Token) *Printer {
	return &Printer{
		tokens:      tokens,
		output:      &bytes.Buffer{},
		atLineStart: true,
		frames:      []*frame{{}},
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), " \n") + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

// newline ends the current line unless nothing has been written on it.
func (p *Printer) newline() {
	if !p.atLineStart {
		p.writeln()
	}
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) top() *frame {
	return p.frames[len(p.frames)-1]
}

func (p *Printer) peek(n int) Token {
	if p.idx+n < len(p.tokens) {
		return p.tokens[p.idx+n]
	}
	return Token{Kind: EOF}
}

func upper(t Token) string {
	if t.Kind != Word {
		return ""
	}
	return strings.ToUpper(t.Text)
}

// isKeyword reports whether the token at offset n is used as a keyword.
// LEFT and RIGHT are also string functions, so they only count before a join.
func (p *Printer) isKeyword(n int) bool {
	u := upper(p.peek(n))
	if !keywords[u] {
		return false
	}
	if u == "LEFT" || u == "RIGHT" {
		next := upper(p.peek(n + 1))
		return next == "JOIN" || next == "OUTER"
	}
	return true
}

// emit writes one token with the spacing implied by its neighbours.
func (p *Printer) emit(t Token, keyword bool) {
	if p.needSpace(t) {
		p.output.WriteByte(' ')
	}
	text := t.Text
	if keyword {
		text = strings.ToUpper(text)
	}
	p.write(text)

	p.prevUnary = t.Kind == Operator && (t.Text == "-" || t.Text == "+") && p.expectsOperand()
	p.prev = t
	p.prevKeyword = keyword
}

// expectsOperand reports whether the previously emitted token leaves the
// printer expecting a value, which makes a following sign unary.
func (p *Printer) expectsOperand() bool {
	switch {
	case p.prev.Kind == EOF:
		return true
	case p.prev.Kind == Operator:
		return true
	case p.prev.is("(") || p.prev.is(","):
		return true
	case p.prevKeyword:
		return upper(p.prev) != "END" && upper(p.prev) != "NULL"
	}
	return false
}

func (p *Printer) needSpace(t Token) bool {
	if p.atLineStart || p.prev.Kind == EOF {
		return false
	}
	if t.is(",") || t.is(")") || t.is(".") || t.is(";") {
		return false
	}
	if p.prev.is("(") || p.prev.is(".") || p.prevUnary {
		return false
	}
	if t.is("(") && !p.prevKeyword && (p.prev.Kind == Word || p.prev.Kind == QuotedIdent) {
		return false
	}
	return true
}

// clauseAt returns the clause starting at the current token and how many
// tokens it spans, or "" if the token does not start a clause.
func (p *Printer) clauseAt() (string, int) {
	if !p.isKeyword(0) {
		return "", 0
	}
	switch u := upper(p.peek(0)); u {
	case "SELECT", "FROM", "WHERE", "HAVING", "FETCH", "OFFSET", "JOIN",
		"INTERSECT", "MINUS", "EXCEPT", "WITH":
		return u, 1
	case "GROUP", "ORDER":
		if upper(p.peek(1)) == "BY" {
			return u + " BY", 2
		}
	case "UNION":
		if upper(p.peek(1)) == "ALL" {
			return "UNION ALL", 2
		}
		return u, 1
	case "LEFT", "RIGHT", "FULL", "INNER", "CROSS":
		words := []string{u}
		for n := 1; n < 3; n++ {
			next := upper(p.peek(n))
			words = append(words, next)
			if next == "JOIN" {
				return strings.Join(words, " "), n + 1
			}
			if next != "OUTER" {
				break
			}
		}
	}
	return "", 0
}

func (p *Printer) startClause(name string, span int) {
	f := p.top()
	f.clause = name
	f.between = false

	p.newline()
	p.depth = f.base
	p.prev = Token{}
	p.prevKeyword = false
	p.emit(Token{Kind: Word, Text: name}, true)
	p.idx += span

	switch {
	case strings.HasPrefix(name, "UNION") || name == "INTERSECT" || name == "MINUS" || name == "EXCEPT":
		p.writeln()
	case listClauses[name]:
		if name == "SELECT" {
			p.selectModifiers()
		}
		p.writeln()
		p.depth = f.base + 1
	}
}

// selectModifiers keeps DISTINCT and TOP n on the SELECT line.
func (p *Printer) selectModifiers() {
	for {
		switch upper(p.peek(0)) {
		case "DISTINCT", "ALL":
			p.emit(p.peek(0), true)
			p.idx++
			continue
		case "TOP":
			p.emit(p.peek(0), true)
			p.idx++
			if p.peek(0).Kind == Number {
				p.emit(p.peek(0), false)
				p.idx++
			}
			continue
		}
		return
	}
}

func (p *Printer) run() {
	for p.idx < len(p.tokens) {
		f := p.top()
		t := p.peek(0)

		if f.parens == 0 {
			if name, span := p.clauseAt(); name != "" {
				p.startClause(name, span)
				continue
			}
		}

		switch {
		case t.Kind == LineComment:
			if !p.atLineStart {
				p.output.WriteByte(' ')
			}
			p.write(t.Text)
			p.writeln()
			p.prev = t
			p.prevKeyword = false

		case t.is("("):
			p.emit(t, false)
			if u := upper(p.peek(1)); u == "SELECT" || u == "WITH" {
				p.frames = append(p.frames, &frame{
					base:     p.depth + 1,
					outer:    p.depth,
					subquery: true,
				})
				p.writeln()
			} else {
				f.parens++
			}

		case t.is(")"):
			if f.parens == 0 && f.subquery {
				p.frames = p.frames[:len(p.frames)-1]
				p.newline()
				p.depth = f.outer
				p.prev = Token{}
				p.emit(t, false)
				break
			}
			if f.parens > 0 {
				f.parens--
			}
			p.emit(t, false)

		case t.is(","):
			p.emit(t, false)
			if f.parens == 0 && listClauses[f.clause] {
				p.writeln()
			}

		case f.parens == 0 && (f.clause == "WHERE" || f.clause == "HAVING") && p.isKeyword(0) &&
			(upper(t) == "AND" || upper(t) == "OR"):
			if upper(t) == "AND" && f.between {
				f.between = false
				p.emit(t, true)
				break
			}
			p.newline()
			p.emit(t, true)

		default:
			kw := p.isKeyword(0)
			if kw && upper(t) == "BETWEEN" {
				f.between = true
			}
			p.emit(t, kw)
		}
		p.idx++
	}
}
