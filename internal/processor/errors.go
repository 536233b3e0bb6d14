package processor

import "fmt"

// ErrorKind tags every failure a transform can produce so callers can
// distinguish them programmatically instead of matching message text.
type ErrorKind int

const (
	// ErrDirectiveSyntax: malformed directive keyword or arguments.
	ErrDirectiveSyntax ErrorKind = iota
	// ErrUnbalancedBlock: #elif/#else/#endif with no matching open #if.
	ErrUnbalancedBlock
	// ErrUnclosedBlock: end of input reached with open #if frames.
	ErrUnclosedBlock
	// ErrExprSyntax: an expression could not be parsed.
	ErrExprSyntax
	// ErrExprRuntime: a valid expression performed an invalid operation.
	ErrExprRuntime
	// ErrUser: an active #error directive was reached.
	ErrUser
)

func (k ErrorKind) String() string {
	switch k {
	case ErrDirectiveSyntax:
		return "directive syntax error"
	case ErrUnbalancedBlock:
		return "unbalanced block"
	case ErrUnclosedBlock:
		return "unclosed block"
	case ErrExprSyntax:
		return "expression syntax error"
	case ErrExprRuntime:
		return "expression runtime error"
	case ErrUser:
		return "user error"
	}
	return "error"
}

// Error is the tagged error every transform failure is reported as, attributed
// to the file and line that caused it. A failing file yields no output.
type Error struct {
	Kind    ErrorKind
	File    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
}
