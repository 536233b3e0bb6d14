// Package processor implements the conditional-compilation transform: it
// rewrites one file's source text according to comment-embedded directives,
// substitutes compile-time variables into active code and reassembles the
// output without ever changing the line count.
package processor

import (
	"errors"
	"path/filepath"
	"strings"

	"condcomp/internal/env"
	"condcomp/internal/eval"
	"condcomp/internal/parser"
)

// Result is the output of one successful transform.
type Result struct {
	Code string
	Map  *SourceMap
}

// Preprocessor owns the variable environment shared across every file it
// transforms. #set/#unset performed while processing one file remain visible
// to later files; that cross-file persistence is intentional. The instance is
// not internally locked: callers invoking Transform concurrently must
// serialize access themselves.
type Preprocessor struct {
	environment    *env.Environment
	syntaxes       map[string]parser.Syntax
	keep           []commentMatcher
	filterComments bool
	root           string
}

// New creates a preprocessor instance from opts.
func New(opts Options) (*Preprocessor, error) {
	keep, err := compileSelectors(opts.Comments)
	if err != nil {
		return nil, err
	}
	syntaxes := parser.DefaultSyntaxes()
	for ext, syn := range opts.Extensions {
		syntaxes[strings.ToLower(ext)] = syn
	}
	return &Preprocessor{
		environment:    env.New(opts.Values),
		syntaxes:       syntaxes,
		keep:           keep,
		filterComments: len(opts.Comments) > 0,
		root:           opts.Root,
	}, nil
}

// Recognizes reports whether files with the given extension have a comment
// syntax and therefore should be transformed rather than copied through.
func (p *Preprocessor) Recognizes(ext string) bool {
	_, ok := p.syntaxes[strings.ToLower(ext)]
	return ok
}

// frame is one open conditional block.
type frame struct {
	line         int  // source line of the opening directive
	parentActive bool // all enclosing frames were active when opened
	active       bool // the current branch of this frame is active
	matched      bool // some branch of this frame has already matched
	elseSeen     bool
}

// Transform rewrites source according to its directives. fileID names the
// file for error attribution and the __FILE built-in; it is made relative to
// the configured root. On failure no output is produced.
func (p *Preprocessor) Transform(source, fileID string) (Result, error) {
	syn, ok := p.syntaxes[strings.ToLower(filepath.Ext(fileID))]
	if !ok {
		syn = parser.Script
	}

	// __FILE is a built-in, recomputed for every invocation.
	p.environment.Set("__FILE", p.relFile(fileID))

	lines := strings.Split(source, "\n")
	out := make([]string, len(lines))
	mappings := make([]LineMapping, len(lines))
	var stack []frame

	active := func() bool {
		if len(stack) == 0 {
			return true
		}
		top := stack[len(stack)-1]
		return top.parentActive && top.active
	}

	for i, line := range lines {
		ln := i + 1
		mappings[i] = LineMapping{Line: ln}
		class, dir, err := parser.Classify(line, syn, ln)
		if err != nil {
			return Result{}, &Error{Kind: ErrDirectiveSyntax, File: fileID, Line: ln, Message: errMessage(err)}
		}

		switch class {
		case parser.Code:
			if !active() {
				mappings[i].Blank = true
				continue
			}
			out[i], mappings[i].Edits = p.substitute(line)

		case parser.Comment:
			if !active() {
				mappings[i].Blank = true
				continue
			}
			if p.filterComments {
				text, _ := parser.CommentText(line, syn)
				if !p.retained(text) {
					mappings[i].Blank = true
					continue
				}
				// Retained comments pass through verbatim, untouched by
				// substitution.
				out[i] = line
				continue
			}
			out[i], mappings[i].Edits = p.substitute(line)

		case parser.DirectiveLine:
			// Directive lines never reach the output; they are blanked to
			// keep downstream source maps valid.
			mappings[i].Blank = true
			switch dir.Kind {
			case parser.KindIf:
				f := frame{line: ln, parentActive: active()}
				if f.parentActive {
					cond, err := p.condition(dir.Expr, fileID, ln)
					if err != nil {
						return Result{}, err
					}
					f.active = cond
					f.matched = cond
				}
				stack = append(stack, f)

			case parser.KindIfset, parser.KindIfnset:
				f := frame{line: ln, parentActive: active()}
				if f.parentActive {
					set := p.environment.Has(dir.Name)
					if dir.Kind == parser.KindIfnset {
						set = !set
					}
					f.active = set
					f.matched = set
				}
				stack = append(stack, f)

			case parser.KindElif:
				if len(stack) == 0 {
					return Result{}, &Error{Kind: ErrUnbalancedBlock, File: fileID, Line: ln, Message: "#elif without matching #if"}
				}
				top := &stack[len(stack)-1]
				if top.elseSeen {
					return Result{}, &Error{Kind: ErrUnbalancedBlock, File: fileID, Line: ln, Message: "#elif after #else"}
				}
				switch {
				case !top.parentActive, top.matched:
					// Dead branch; the expression is never evaluated, so an
					// unset reference here cannot raise an error.
					top.active = false
				default:
					cond, err := p.condition(dir.Expr, fileID, ln)
					if err != nil {
						return Result{}, err
					}
					top.active = cond
					top.matched = cond
				}

			case parser.KindElse:
				if len(stack) == 0 {
					return Result{}, &Error{Kind: ErrUnbalancedBlock, File: fileID, Line: ln, Message: "#else without matching #if"}
				}
				top := &stack[len(stack)-1]
				if top.elseSeen {
					return Result{}, &Error{Kind: ErrUnbalancedBlock, File: fileID, Line: ln, Message: "duplicate #else"}
				}
				top.elseSeen = true
				top.active = top.parentActive && !top.matched
				if top.active {
					top.matched = true
				}

			case parser.KindEndif:
				if len(stack) == 0 {
					return Result{}, &Error{Kind: ErrUnbalancedBlock, File: fileID, Line: ln, Message: "#endif without matching #if"}
				}
				stack = stack[:len(stack)-1]

			case parser.KindSet:
				if !active() {
					continue
				}
				var value env.Value = true
				if dir.Expr != "" {
					value, err = p.evaluate(dir.Expr, fileID, ln)
					if err != nil {
						return Result{}, err
					}
				}
				p.environment.Set(dir.Name, value)

			case parser.KindUnset:
				if !active() {
					continue
				}
				if dir.Name == "__FILE" {
					return Result{}, &Error{Kind: ErrDirectiveSyntax, File: fileID, Line: ln, Message: "cannot unset built-in variable __FILE"}
				}
				p.environment.Unset(dir.Name)

			case parser.KindError:
				if !active() {
					continue
				}
				return Result{}, &Error{Kind: ErrUser, File: fileID, Line: ln, Message: dir.Message}
			}
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return Result{}, &Error{Kind: ErrUnclosedBlock, File: fileID, Line: top.line, Message: "unterminated conditional block"}
	}

	return Result{
		Code: strings.Join(out, "\n"),
		Map:  &SourceMap{File: fileID, Lines: mappings},
	}, nil
}

func (p *Preprocessor) relFile(fileID string) string {
	if p.root == "" {
		return filepath.ToSlash(fileID)
	}
	rel, err := filepath.Rel(p.root, fileID)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(fileID)
	}
	return filepath.ToSlash(rel)
}

func (p *Preprocessor) retained(text string) bool {
	for _, m := range p.keep {
		if m.match(text) {
			return true
		}
	}
	return false
}

func (p *Preprocessor) condition(expr, fileID string, line int) (bool, error) {
	v, err := p.evaluate(expr, fileID, line)
	if err != nil {
		return false, err
	}
	return env.Truthy(v), nil
}

func (p *Preprocessor) evaluate(expr, fileID string, line int) (env.Value, error) {
	v, err := eval.Evaluate(expr, p.environment)
	if err != nil {
		kind := ErrExprRuntime
		var syntaxErr *eval.SyntaxError
		if errors.As(err, &syntaxErr) {
			kind = ErrExprSyntax
		}
		return nil, &Error{Kind: kind, File: fileID, Line: line, Message: errMessage(err)}
	}
	return v, nil
}

// substitute replaces every standalone token matching a defined variable name
// with the literal rendering of its value. It never adds or removes lines.
func (p *Preprocessor) substitute(line string) (string, []Edit) {
	var b strings.Builder
	var edits []Edit
	i := 0
	for i < len(line) {
		c := line[i]
		if !isIdentStart(c) {
			b.WriteByte(c)
			i++
			continue
		}
		start := i
		for i < len(line) && isIdentPart(line[i]) {
			i++
		}
		word := line[start:i]
		if env.IsVarName(word) && p.environment.Has(word) {
			rendered := env.Render(p.environment.Get(word))
			b.WriteString(rendered)
			if rendered != word {
				edits = append(edits, Edit{Col: start, SrcLen: len(word), OutLen: len(rendered)})
			}
			continue
		}
		b.WriteString(word)
	}
	if edits == nil {
		return line, nil
	}
	return b.String(), edits
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
