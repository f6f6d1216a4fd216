package liquid

// The lexer turns the markup of a single tag or output into a flat token
// sequence. It never looks at template delimiters; see tokenizer.go for that.

// TokenKind classifies an expression token.
type TokenKind int

const (
	TokenEOS TokenKind = iota
	TokenID
	TokenString
	TokenNumber
	TokenComparison
	TokenDotDot
	TokenPipe
	TokenDot
	TokenColon
	TokenComma
	TokenOpenSquare
	TokenCloseSquare
	TokenOpenRound
	TokenCloseRound
	TokenQuestion
	TokenDash
)

// String returns the name used in parse error messages.
func (k TokenKind) String() string {
	switch k {
	case TokenEOS:
		return "end_of_string"
	case TokenID:
		return "id"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenComparison:
		return "comparison"
	case TokenDotDot:
		return "dotdot"
	case TokenPipe:
		return "pipe"
	case TokenDot:
		return "dot"
	case TokenColon:
		return "colon"
	case TokenComma:
		return "comma"
	case TokenOpenSquare:
		return "open_square"
	case TokenCloseSquare:
		return "close_square"
	case TokenOpenRound:
		return "open_round"
	case TokenCloseRound:
		return "close_round"
	case TokenQuestion:
		return "question"
	case TokenDash:
		return "dash"
	}
	return "unknown"
}

// Token is one lexeme of expression markup.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // byte offset in the markup
}

var specials = map[byte]TokenKind{
	'|': TokenPipe,
	'.': TokenDot,
	':': TokenColon,
	',': TokenComma,
	'[': TokenOpenSquare,
	']': TokenCloseSquare,
	'(': TokenOpenRound,
	')': TokenCloseRound,
	'?': TokenQuestion,
	'-': TokenDash,
}

type lexer struct {
	src    string
	i      int
	n      int
	tokens []Token
	loc    *Locale
}

// Lex tokenizes markup. The returned slice always ends with a TokenEOS.
func Lex(markup string) ([]Token, error) {
	return lex(markup, defaultLocale)
}

func lex(markup string, loc *Locale) ([]Token, error) {
	l := &lexer{src: markup, n: len(markup), loc: loc}
	for {
		l.skipSpace()
		if l.i >= l.n {
			l.emit(TokenEOS, l.i, l.i)
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) emit(kind TokenKind, start, end int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.src[start:end], Pos: start})
}

func (l *lexer) peekAt(off int) byte {
	if l.i+off >= l.n {
		return 0
	}
	return l.src[l.i+off]
}

func (l *lexer) skipSpace() {
	for l.i < l.n && isSpace(l.src[l.i]) {
		l.i++
	}
}

func (l *lexer) unexpected(c byte) error {
	return SyntaxError("%s", l.loc.T("errors.syntax.unexpected_character", "character", string(c)))
}

func (l *lexer) next() error {
	start := l.i
	c := l.src[l.i]
	switch {
	case c == '=':
		if l.peekAt(1) != '=' {
			return l.unexpected(c)
		}
		l.i += 2
		l.emit(TokenComparison, start, l.i)
	case c == '!':
		if l.peekAt(1) != '=' {
			return l.unexpected(c)
		}
		l.i += 2
		l.emit(TokenComparison, start, l.i)
	case c == '<':
		if n := l.peekAt(1); n == '=' || n == '>' {
			l.i += 2
		} else {
			l.i++
		}
		l.emit(TokenComparison, start, l.i)
	case c == '>':
		if l.peekAt(1) == '=' {
			l.i += 2
		} else {
			l.i++
		}
		l.emit(TokenComparison, start, l.i)
	case c == '"' || c == '\'':
		end := l.i + 1
		for end < l.n && l.src[end] != c {
			end++
		}
		if end >= l.n {
			return l.unexpected(c)
		}
		l.i = end + 1
		l.emit(TokenString, start, l.i)
	case isDigit(c) || (c == '-' && isDigit(l.peekAt(1))):
		l.i++
		for l.i < l.n && isDigit(l.src[l.i]) {
			l.i++
		}
		if l.peekAt(0) == '.' && isDigit(l.peekAt(1)) {
			l.i++
			for l.i < l.n && isDigit(l.src[l.i]) {
				l.i++
			}
		}
		l.emit(TokenNumber, start, l.i)
	case isIdentStart(c):
		l.i++
		for l.i < l.n && (isWordChar(l.src[l.i]) || l.src[l.i] == '-') {
			l.i++
		}
		if l.peekAt(0) == '?' {
			l.i++
		}
		word := l.src[start:l.i]
		if word == "contains" && l.i < l.n && isSpace(l.src[l.i]) {
			l.emit(TokenComparison, start, l.i)
		} else {
			l.emit(TokenID, start, l.i)
		}
	case c == '.' && l.peekAt(1) == '.':
		l.i += 2
		l.emit(TokenDotDot, start, l.i)
	default:
		kind, ok := specials[c]
		if !ok {
			return l.unexpected(c)
		}
		l.i++
		l.emit(kind, start, l.i)
	}
	return nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isWordChar(b byte) bool { return isIdentStart(b) || isDigit(b) }
