// Package parser classifies source lines against a comment Syntax and parses
// comment-embedded preprocessor directives.
package parser

import (
	"fmt"
	"strings"

	"condcomp/internal/env"
)

// Kind identifies a directive keyword.
type Kind int

const (
	KindIf Kind = iota
	KindElif
	KindElse
	KindEndif
	KindIfset
	KindIfnset
	KindSet
	KindUnset
	KindError
)

var kindNames = map[string]Kind{
	"if":     KindIf,
	"elif":   KindElif,
	"else":   KindElse,
	"endif":  KindEndif,
	"ifset":  KindIfset,
	"ifnset": KindIfnset,
	"set":    KindSet,
	"unset":  KindUnset,
	"error":  KindError,
}

// Directive is one parsed directive line.
type Directive struct {
	Kind    Kind
	Name    string // variable name for set/unset/ifset/ifnset
	Expr    string // expression text for if/elif and the #set right-hand side
	Message string // message text for #error
	Line    int    // 1-based source line
}

// Class is the result of classifying one line.
type Class int

const (
	Code          Class = iota // ordinary source line
	Comment                    // full-line comment that is not a directive
	DirectiveLine              // comment-embedded directive
)

// A SyntaxError describes a malformed directive.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Classify decides whether line is a directive, an ordinary full-line comment,
// or code, using the given comment syntax. Whitespace inside the comment
// delimiters never affects recognition. A comment whose first word starts with
// '#' but is not a recognized keyword is treated as an ordinary comment; a
// recognized keyword with malformed arguments is a SyntaxError.
func Classify(line string, syn Syntax, lineNum int) (Class, *Directive, error) {
	inner, isComment := CommentText(line, syn)
	if !isComment {
		return Code, nil, nil
	}
	if !strings.HasPrefix(inner, "#") {
		return Comment, nil, nil
	}

	keyword, rest := splitWord(inner[1:])
	kind, ok := kindNames[keyword]
	if !ok {
		// Could be a markdown heading or another tool's marker; let it pass.
		return Comment, nil, nil
	}

	d := &Directive{Kind: kind, Line: lineNum}
	switch kind {
	case KindIf, KindElif:
		if rest == "" {
			return 0, nil, &SyntaxError{Line: lineNum, Msg: fmt.Sprintf("#%s requires an expression", keyword)}
		}
		d.Expr = rest
	case KindElse, KindEndif:
		if rest != "" {
			return 0, nil, &SyntaxError{Line: lineNum, Msg: fmt.Sprintf("unexpected text after #%s", keyword)}
		}
	case KindIfset, KindIfnset, KindUnset:
		name, extra := splitWord(rest)
		if name == "" || extra != "" {
			return 0, nil, &SyntaxError{Line: lineNum, Msg: fmt.Sprintf("#%s requires exactly one variable name", keyword)}
		}
		if !env.IsVarName(name) {
			return 0, nil, &SyntaxError{Line: lineNum, Msg: fmt.Sprintf("%q is not a valid variable name", name)}
		}
		d.Name = name
	case KindSet:
		name, expr := splitWord(rest)
		if name == "" {
			return 0, nil, &SyntaxError{Line: lineNum, Msg: "#set requires a variable name"}
		}
		if !env.IsVarName(name) {
			return 0, nil, &SyntaxError{Line: lineNum, Msg: fmt.Sprintf("%q is not a valid variable name", name)}
		}
		d.Name = name
		d.Expr = expr
	case KindError:
		d.Message = rest
	}
	return DirectiveLine, d, nil
}

// CommentText returns the trimmed interior of line when the whole line is a
// single comment under syn, and whether it was one. Block comments must open
// and close on the same line to count; an unterminated block opener is code
// from the scanner's point of view.
func CommentText(line string, syn Syntax) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range syn.Line {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	for _, pair := range syn.Block {
		opener, closer := pair[0], pair[1]
		if strings.HasPrefix(trimmed, opener) && strings.HasSuffix(trimmed, closer) &&
			len(trimmed) >= len(opener)+len(closer) {
			return strings.TrimSpace(trimmed[len(opener) : len(trimmed)-len(closer)]), true
		}
	}
	return "", false
}

// splitWord splits s into its first whitespace-delimited word and the trimmed
// remainder.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
