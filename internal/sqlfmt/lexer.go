package sqlfmt

import "unicode"

// Kind identifies the lexical class of a token.
type Kind int

// Token kinds.
const (
	EOF Kind = iota
	Word
	Number
	String
	QuotedIdent
	LineComment
	BlockComment
	Operator
	Punct
)

// Token is a lexeme together with its exact source text.
type Token struct {
	Kind Kind
	Text string
}

func (t Token) is(text string) bool {
	return t.Kind == Punct && t.Text == text
}

// Lexer splits a query into tokens. Whitespace is dropped; comments are kept.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

// NewLexer creates a Lexer for input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token, or an EOF token at the end of input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.atEnd() {
		return Token{Kind: EOF}
	}

	start := l.pos
	switch {
	case l.ch == '-' && l.peekChar() == '-':
		for l.ch != '\n' && !l.atEnd() {
			l.readChar()
		}
		return Token{Kind: LineComment, Text: l.input[start:l.pos]}
	case l.ch == '/' && l.peekChar() == '*':
		l.readChar()
		l.readChar()
		for !l.atEnd() {
			if l.ch == '*' && l.peekChar() == '/' {
				l.readChar()
				l.readChar()
				break
			}
			l.readChar()
		}
		return Token{Kind: BlockComment, Text: l.input[start:l.pos]}
	case l.ch == '\'':
		l.readQuoted('\'')
		return Token{Kind: String, Text: l.input[start:l.pos]}
	case l.ch == '"':
		l.readQuoted('"')
		return Token{Kind: QuotedIdent, Text: l.input[start:l.pos]}
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		l.readNumber()
		return Token{Kind: Number, Text: l.input[start:l.pos]}
	case isWordStart(l.ch):
		for isWordPart(l.ch) {
			l.readChar()
		}
		return Token{Kind: Word, Text: l.input[start:l.pos]}
	}

	switch l.ch {
	case '<':
		if p := l.peekChar(); p == '=' || p == '>' {
			l.readChar()
		}
		l.readChar()
		return Token{Kind: Operator, Text: l.input[start:l.pos]}
	case '>', '!':
		if l.peekChar() == '=' {
			l.readChar()
		}
		l.readChar()
		return Token{Kind: Operator, Text: l.input[start:l.pos]}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
		}
		l.readChar()
		return Token{Kind: Operator, Text: l.input[start:l.pos]}
	case '+', '-', '*', '/', '%', '=':
		l.readChar()
		return Token{Kind: Operator, Text: l.input[start:l.pos]}
	}

	l.readChar()
	return Token{Kind: Punct, Text: l.input[start:l.pos]}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readQuoted consumes a quoted literal including its delimiters.
// A doubled quote inside the literal is an escaped quote.
func (l *Lexer) readQuoted(quote byte) {
	l.readChar() // skip opening quote
	for !l.atEnd() {
		if l.ch == quote {
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return
		}
		l.readChar()
	}
}

// readNumber reads an integer, decimal or scientific literal.
func (l *Lexer) readNumber() {
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
}

func isWordStart(ch byte) bool {
	return ch == '_' || ch >= 0x80 || unicode.IsLetter(rune(ch))
}

func isWordPart(ch byte) bool {
	return isWordStart(ch) || isDigit(ch) || ch == '$' || ch == '#'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens of input, excluding the final EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Kind == EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}
