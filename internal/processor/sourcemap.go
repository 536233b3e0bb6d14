package processor

// SourceMap records how output lines relate to input lines. The assembler
// never deletes a line, so line N of the output always corresponds to line N
// of the input; the map only has to say which lines were blanked and where
// substitutions shifted columns. That is enough for a bundler to compose an
// inline or external source map without a remapping pass.
type SourceMap struct {
	File  string        `json:"file"`
	Lines []LineMapping `json:"lines"`
}

// LineMapping describes one output line.
type LineMapping struct {
	Line  int    `json:"line"` // 1-based, same in input and output
	Blank bool   `json:"blank,omitempty"`
	Edits []Edit `json:"edits,omitempty"`
}

// Edit is one in-line substitution: at byte column Col of the original line,
// SrcLen bytes were replaced by OutLen bytes. Columns are 0-based and refer to
// the original text; edits are ordered left to right.
type Edit struct {
	Col    int `json:"col"`
	SrcLen int `json:"srcLen"`
	OutLen int `json:"outLen"`
}
