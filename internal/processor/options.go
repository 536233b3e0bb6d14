package processor

import (
	"fmt"
	"regexp"
	"strings"

	"condcomp/internal/parser"
)

// Options configures one preprocessor instance.
type Options struct {
	// Values is the initial variable mapping seeded into the environment at
	// construction. It is not re-seeded per file.
	Values map[string]interface{}

	// Comments lists retention selectors for ordinary (non-directive)
	// comments. A selector is either a literal prefix of the comment text
	// (e.g. "!" for license banners, "eslint-") or a regular expression
	// written as /pattern/. When the list is empty every comment is kept;
	// when configured, full-line comments that match no selector are blanked.
	Comments []string

	// Extensions maps file extensions (with the dot) to alternate comment
	// syntaxes, merged over the built-in scripting-language table.
	Extensions map[string]parser.Syntax

	// Root is the directory file ids are made relative to when seeding
	// __FILE. Empty means file ids are used as given.
	Root string
}

// commentMatcher is one compiled retention selector.
type commentMatcher struct {
	prefix  string
	pattern *regexp.Regexp
}

func (m commentMatcher) match(text string) bool {
	if m.pattern != nil {
		return m.pattern.MatchString(text)
	}
	return strings.HasPrefix(text, m.prefix)
}

func compileSelectors(selectors []string) ([]commentMatcher, error) {
	matchers := make([]commentMatcher, 0, len(selectors))
	for _, s := range selectors {
		if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
			re, err := regexp.Compile(s[1 : len(s)-1])
			if err != nil {
				return nil, fmt.Errorf("invalid comment selector %q: %w", s, err)
			}
			matchers = append(matchers, commentMatcher{pattern: re})
			continue
		}
		matchers = append(matchers, commentMatcher{prefix: s})
	}
	return matchers, nil
}
