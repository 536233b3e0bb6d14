package eval

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkNumber
	tkString
	tkIdent
	tkPunct
)

type token struct {
	kind tokenKind
	text string  // identifier or punctuator text
	num  float64 // decoded number for tkNumber
	str  string  // decoded string for tkString
	pos  int     // byte offset in the expression
}

// Multi-character punctuators must be tried before their prefixes.
var punctuators = []string{
	"===", "!==", "==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "!", "<", ">", "?", ":", ".", "(", ")", "[", "]",
}

// lex splits an expression into tokens, ending with an EOF token.
func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]

		if c == ' ' || c == '\t' {
			i++
			continue
		}

		if isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])) {
			end, num, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tkNumber, num: num, pos: i})
			i = end
			continue
		}

		if c == '\'' || c == '"' {
			end, str, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tkString, str: str, pos: i})
			i = end
			continue
		}

		if isIdentStart(c) {
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tkIdent, text: src[start:i], pos: start})
			continue
		}

		punct := ""
		for _, p := range punctuators {
			if strings.HasPrefix(src[i:], p) {
				punct = p
				break
			}
		}
		if punct == "" {
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", rune(c))}
		}
		tokens = append(tokens, token{kind: tkPunct, text: punct, pos: i})
		i += len(punct)
	}

	tokens = append(tokens, token{kind: tkEOF, pos: len(src)})
	return tokens, nil
}

func lexNumber(src string, start int) (int, float64, error) {
	i := start

	// Hexadecimal form.
	if src[i] == '0' && i+1 < len(src) && (src[i+1] == 'x' || src[i+1] == 'X') {
		i += 2
		hexStart := i
		for i < len(src) && isHexDigit(src[i]) {
			i++
		}
		if i == hexStart {
			return 0, 0, &SyntaxError{Pos: start, Msg: "malformed hexadecimal literal"}
		}
		n, err := strconv.ParseUint(src[hexStart:i], 16, 64)
		if err != nil {
			return 0, 0, &SyntaxError{Pos: start, Msg: "malformed hexadecimal literal"}
		}
		return i, float64(n), nil
	}

	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		i++
		if i < len(src) && (src[i] == '+' || src[i] == '-') {
			i++
		}
		expStart := i
		for i < len(src) && isDigit(src[i]) {
			i++
		}
		if i == expStart {
			return 0, 0, &SyntaxError{Pos: start, Msg: "malformed exponent"}
		}
	}

	f, err := strconv.ParseFloat(src[start:i], 64)
	if err != nil {
		return 0, 0, &SyntaxError{Pos: start, Msg: "malformed number literal"}
	}
	return i, f, nil
}

func lexString(src string, start int) (int, string, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		switch c {
		case quote:
			return i + 1, b.String(), nil
		case '\\':
			if i+1 >= len(src) {
				return 0, "", &SyntaxError{Pos: start, Msg: "unterminated string literal"}
			}
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(src[i])
			default:
				return 0, "", &SyntaxError{Pos: i, Msg: fmt.Sprintf("unknown escape \\%c", src[i])}
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return 0, "", &SyntaxError{Pos: start, Msg: "unterminated string literal"}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
