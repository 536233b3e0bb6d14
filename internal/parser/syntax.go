package parser

// Syntax describes the comment delimiters used to recognize directive lines in
// one family of file extensions. A directive must occupy a full line: optional
// whitespace, a comment opener, the directive text, and (for block comments)
// the closer at the end of the same line.
type Syntax struct {
	Line  []string    // line-comment openers, e.g. "//"
	Block [][2]string // block-comment open/close pairs, e.g. {"/*", "*/"}
}

// Script is the default syntax for scripting-language sources.
var Script = Syntax{
	Line:  []string{"//"},
	Block: [][2]string{{"/*", "*/"}},
}

// Markup recognizes HTML-style comments; it is not in the default table and is
// normally wired in through the extensions option.
var Markup = Syntax{
	Block: [][2]string{{"<!--", "-->"}},
}

// DefaultSyntaxes returns the built-in extension table covering the usual
// scripting-language sources. Keys are lowercase extensions with the dot.
func DefaultSyntaxes() map[string]Syntax {
	table := make(map[string]Syntax)
	for _, ext := range []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"} {
		table[ext] = Script
	}
	return table
}
