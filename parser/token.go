package parser

import (
	"strconv"
	"unicode"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenInt
	TokenFloat
	TokenString
	TokenLBrace
	TokenRBrace
	TokenLAngle
	TokenRAngle
	TokenColon
	TokenSemi
	TokenComma
	TokenEqual
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenLAngle:
		return "'<'"
	case TokenRAngle:
		return "'>'"
	case TokenColon:
		return "':'"
	case TokenSemi:
		return "';'"
	case TokenComma:
		return "','"
	case TokenEqual:
		return "'='"
	}
	return "unknown"
}

// Token is one lexical token. For strings Value holds the unquoted text.
type Token struct {
	Value string
	Type  TokenType
	Line  int
}

var punct = map[rune]TokenType{
	'{': TokenLBrace,
	'}': TokenRBrace,
	'<': TokenLAngle,
	'>': TokenRAngle,
	':': TokenColon,
	';': TokenSemi,
	',': TokenComma,
	'=': TokenEqual,
}

// Tokenize splits schema source into tokens. Whitespace and comments (//,
// # and /* */) are dropped. The result always ends with a TokenEOF.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == '#' || (r == '/' && i+1 < len(runes) && runes[i+1] == '/') {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			i--
			continue
		}

		// Block comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			start := line
			i += 2
			for i < len(runes) && !(runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/') {
				if runes[i] == '\n' {
					line++
				}
				i++
			}
			if i >= len(runes) {
				return nil, &SyntaxError{Line: start, Msg: "unterminated block comment"}
			}
			i++
			continue
		}

		if typ, ok := punct[r]; ok {
			tokens = append(tokens, Token{string(r), typ, line})
			continue
		}

		// String literal, either quote style
		if r == '"' || r == '\'' {
			quote := r
			start := i
			i++
			for i < len(runes) && runes[i] != quote {
				if runes[i] == '\n' {
					return nil, &SyntaxError{Line: line, Msg: "newline in string literal"}
				}
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(runes) {
				return nil, &SyntaxError{Line: line, Msg: "unterminated string literal"}
			}
			raw := string(runes[start : i+1])
			if quote == '\'' {
				raw = `"` + string(runes[start+1:i]) + `"`
			}
			value, err := strconv.Unquote(raw)
			if err != nil {
				return nil, &SyntaxError{Line: line, Msg: "invalid string literal " + raw}
			}
			tokens = append(tokens, Token{value, TokenString, line})
			continue
		}

		// Number, optionally signed
		if unicode.IsDigit(r) || ((r == '-' || r == '+') && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			typ := TokenInt
			i++
			for i < len(runes) {
				c := runes[i]
				switch {
				case unicode.IsDigit(c) || c == 'x' || c == 'X' || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F'):
					if c == 'e' || c == 'E' {
						if !isHex(runes[start:i]) {
							typ = TokenFloat
						}
					}
					i++
					continue
				case c == '.':
					typ = TokenFloat
					i++
					continue
				case (c == '-' || c == '+') && (runes[i-1] == 'e' || runes[i-1] == 'E') && typ == TokenFloat:
					i++
					continue
				}
				break
			}
			tokens = append(tokens, Token{string(runes[start:i]), typ, line})
			i--
			continue
		}

		// Identifier, dotted names allowed
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) {
				c := runes[i]
				if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '.' {
					i++
				} else {
					break
				}
			}
			tokens = append(tokens, Token{string(runes[start:i]), TokenIdent, line})
			i--
			continue
		}

		return nil, &SyntaxError{Line: line, Msg: "unexpected character " + strconv.QuoteRune(r)}
	}

	tokens = append(tokens, Token{"", TokenEOF, line})
	return tokens, nil
}

func isHex(prefix []rune) bool {
	s := string(prefix)
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
