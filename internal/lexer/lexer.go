package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

type TokenType int

// Token types
const (
	LEX_EOF TokenType = iota
	LEX_IDENT
	LEX_INT
	LEX_FLOAT
	LEX_CHAR
	LEX_STRING
	LEX_KEYWORD
	LEX_OPERATOR
	LEX_PUNCTUATION
)

func (t TokenType) String() string {
	switch t {
	case LEX_EOF:
		return "EOF"
	case LEX_IDENT:
		return "IDENT"
	case LEX_INT:
		return "INT"
	case LEX_FLOAT:
		return "FLOAT"
	case LEX_CHAR:
		return "CHAR"
	case LEX_STRING:
		return "STRING"
	case LEX_KEYWORD:
		return "KEYWORD"
	case LEX_OPERATOR:
		return "OPERATOR"
	case LEX_PUNCTUATION:
		return "PUNCTUATION"
	default:
		return "UNKNOWN"
	}
}

// Keywords in MiniC
var keywords = map[string]bool{
	"int":    true,
	"float":  true,
	"char":   true,
	"bool":   true,
	"void":   true,
	"if":     true,
	"else":   true,
	"for":    true,
	"while":  true,
	"return": true,
	"print":  true,
	"read":   true,
	"true":   true,
	"false":  true,
}

// Single-character operators and punctuation
var singleCharTokens = map[rune]TokenType{
	'(': LEX_PUNCTUATION,
	')': LEX_PUNCTUATION,
	'{': LEX_PUNCTUATION,
	'}': LEX_PUNCTUATION,
	';': LEX_PUNCTUATION,
	',': LEX_PUNCTUATION,
	'+': LEX_OPERATOR,
	'-': LEX_OPERATOR,
	'*': LEX_OPERATOR,
	'%': LEX_OPERATOR,
}

type Location struct {
	File string
	Line int
	Col  int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

type Lexeme struct {
	Type TokenType
	Str  string
	Loc  Location
}

func (l Lexeme) String() string {
	if l.Str == "" {
		return fmt.Sprintf("<%s>", l.Type)
	}
	return fmt.Sprintf("<%s %q>", l.Type, l.Str)
}

func (l Lexeme) IsKeyword(kv string) bool {
	return l.Type == LEX_KEYWORD && l.Str == kv
}

func (l Lexeme) IsPunctuation(pv string) bool {
	return l.Type == LEX_PUNCTUATION && l.Str == pv
}

func (l Lexeme) IsOperator(op string) bool {
	return l.Type == LEX_OPERATOR && l.Str == op
}

type Lexer struct {
	input     *bufio.Reader
	file      string
	line      int
	col       int
	prevCol   int
	lastRune  rune
	lastSize  int
	hasUnread bool
}

func New(inputReader io.Reader, file string) *Lexer {
	return &Lexer{
		input:   bufio.NewReader(inputReader),
		file:    file,
		line:    1,
		col:     1,
		prevCol: 1,
	}
}

// readRune reads the next rune from the input
func (l *Lexer) readRune() (rune, int, error) {
	var r rune
	var size int
	var err error

	if l.hasUnread {
		l.hasUnread = false
		r, size, err = l.lastRune, l.lastSize, nil
	} else {
		l.prevCol = l.col
		r, size, err = l.input.ReadRune()
	}

	if err != nil {
		return 0, 0, err
	}

	l.lastRune = r
	l.lastSize = size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, size, nil
}

// unreadRune puts back the last read rune.
// Should be called at most once per readRune.
func (l *Lexer) unreadRune() {
	l.hasUnread = true
	if l.lastRune == '\n' {
		l.line--
	}
	l.col = l.prevCol
}

func (l *Lexer) location(line, col int) Location {
	return Location{File: l.file, Line: line, Col: col}
}

// skipSpace skips whitespace characters
func (l *Lexer) skipSpace() error {
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !unicode.IsSpace(r) {
			l.unreadRune()
			return nil
		}
	}
}

// skipLineComment skips a C++ style comment (from // to end of line)
func (l *Lexer) skipLineComment() error {
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if r == '\n' {
			// Don't unread the newline - we want to consume it
			return nil
		}
	}
}

// skipBlockComment skips a C style comment (from /* to the matching */)
func (l *Lexer) skipBlockComment() error {
	var prev rune
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("%s: unterminated block comment", l.location(l.line, l.col))
			}
			return err
		}
		if prev == '*' && r == '/' {
			return nil
		}
		prev = r
	}
}

// Next returns the next lexeme from the input
func (l *Lexer) Next() (Lexeme, error) {
	// Skip whitespace
	if err := l.skipSpace(); err != nil {
		return Lexeme{Type: LEX_EOF}, err
	}
	// Start position of the lexeme
	startLine := l.line
	startCol := l.col
	// Read the first character
	r, _, err := l.readRune()
	if err != nil {
		if err == io.EOF {
			return Lexeme{Type: LEX_EOF, Loc: l.location(startLine, startCol)}, nil
		}
		return Lexeme{Type: LEX_EOF}, err
	}
	switch {
	case unicode.IsLetter(r) || r == '_':
		l.unreadRune()
		return l.lexIdent(startLine, startCol)
	case unicode.IsDigit(r):
		l.unreadRune()
		return l.lexNumber(startLine, startCol)
	case r == '"':
		return l.lexString(startLine, startCol)
	case r == '\'':
		return l.lexChar(startLine, startCol)
	case r == '/':
		// Could be a comment or the division operator
		nextR, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return Lexeme{Type: LEX_OPERATOR, Str: "/", Loc: l.location(startLine, startCol)}, nil
			}
			return Lexeme{Type: LEX_EOF}, err
		}
		if nextR == '/' {
			if err := l.skipLineComment(); err != nil {
				return Lexeme{Type: LEX_EOF}, err
			}
			return l.Next()
		}
		if nextR == '*' {
			if err := l.skipBlockComment(); err != nil {
				return Lexeme{Type: LEX_EOF}, err
			}
			return l.Next()
		}
		l.unreadRune()
		return Lexeme{Type: LEX_OPERATOR, Str: "/", Loc: l.location(startLine, startCol)}, nil
	case r == '&' || r == '|':
		// && and || are the only tokens starting with these characters
		nextR, _, err := l.readRune()
		if err != nil && err != io.EOF {
			return Lexeme{Type: LEX_EOF}, err
		}
		if err == nil && nextR == r {
			return Lexeme{Type: LEX_OPERATOR, Str: string([]rune{r, r}), Loc: l.location(startLine, startCol)}, nil
		}
		if err == nil {
			l.unreadRune()
		}
		return Lexeme{}, fmt.Errorf("%s: unexpected character %q", l.location(startLine, startCol), r)
	case r == '<' || r == '>' || r == '=' || r == '!':
		// Either a single-character operator or one followed by '='
		nextR, _, err := l.readRune()
		if err != nil && err != io.EOF {
			return Lexeme{Type: LEX_EOF}, err
		}
		if err == nil && nextR == '=' {
			return Lexeme{Type: LEX_OPERATOR, Str: string(r) + "=", Loc: l.location(startLine, startCol)}, nil
		}
		if err == nil {
			l.unreadRune()
		}
		return Lexeme{Type: LEX_OPERATOR, Str: string(r), Loc: l.location(startLine, startCol)}, nil
	default:
		if tokenType, ok := singleCharTokens[r]; ok {
			return Lexeme{Type: tokenType, Str: string(r), Loc: l.location(startLine, startCol)}, nil
		}
		return Lexeme{}, fmt.Errorf("%s: unexpected character %q", l.location(startLine, startCol), r)
	}
}

func (l *Lexer) lexIdent(startLine, startCol int) (Lexeme, error) {
	var sb strings.Builder
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Lexeme{Type: LEX_EOF}, err
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			l.unreadRune()
			break
		}
		sb.WriteRune(r)
	}

	str := sb.String()
	tokenType := LEX_IDENT
	if keywords[str] {
		tokenType = LEX_KEYWORD
	}
	return Lexeme{Type: tokenType, Str: str, Loc: l.location(startLine, startCol)}, nil
}

func (l *Lexer) lexNumber(startLine, startCol int) (Lexeme, error) {
	var sb strings.Builder
	tokenType := LEX_INT
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Lexeme{Type: LEX_EOF}, err
		}
		if r == '.' && tokenType == LEX_INT {
			tokenType = LEX_FLOAT
			sb.WriteRune(r)
			continue
		}
		if !unicode.IsDigit(r) {
			l.unreadRune()
			break
		}
		sb.WriteRune(r)
	}
	return Lexeme{Type: tokenType, Str: sb.String(), Loc: l.location(startLine, startCol)}, nil
}

func (l *Lexer) lexString(startLine, startCol int) (Lexeme, error) {
	var sb strings.Builder
	for {
		r, _, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return Lexeme{}, fmt.Errorf("%s: unterminated string literal", l.location(startLine, startCol))
			}
			return Lexeme{Type: LEX_EOF}, err
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			escaped, err := l.lexEscape(startLine, startCol)
			if err != nil {
				return Lexeme{}, err
			}
			sb.WriteRune(escaped)
			continue
		}
		sb.WriteRune(r)
	}
	return Lexeme{Type: LEX_STRING, Str: sb.String(), Loc: l.location(startLine, startCol)}, nil
}

func (l *Lexer) lexChar(startLine, startCol int) (Lexeme, error) {
	r, _, err := l.readRune()
	if err != nil {
		if err == io.EOF {
			return Lexeme{}, fmt.Errorf("%s: unterminated character literal", l.location(startLine, startCol))
		}
		return Lexeme{Type: LEX_EOF}, err
	}
	if r == '\\' {
		r, err = l.lexEscape(startLine, startCol)
		if err != nil {
			return Lexeme{}, err
		}
	}
	closing, _, err := l.readRune()
	if err != nil || closing != '\'' {
		return Lexeme{}, fmt.Errorf("%s: unterminated character literal", l.location(startLine, startCol))
	}
	return Lexeme{Type: LEX_CHAR, Str: string(r), Loc: l.location(startLine, startCol)}, nil
}

func (l *Lexer) lexEscape(startLine, startCol int) (rune, error) {
	r, _, err := l.readRune()
	if err != nil {
		return 0, fmt.Errorf("%s: unterminated escape sequence", l.location(startLine, startCol))
	}
	switch r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '\'', '"':
		return r, nil
	}
	return 0, fmt.Errorf("%s: unknown escape sequence \\%c", l.location(startLine, startCol), r)
}
