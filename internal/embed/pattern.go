package embed

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Pattern describes the load statement a loader script uses to pull the
// binary artifact off disk:
//
//	<keyword> <variable> = <initializer>; ... <read call>(<variable>);
//
// The tokens are matched literally; nothing else about the script is parsed.
type Pattern struct {
	// Keywords that may open the declaration, e.g. "const".
	Keywords []string
	// Variable holds the artifact path in the loader script.
	Variable string
	// ReadCall is the function that loads Variable into bytes. It may be
	// qualified in the source (fs.readFileSync).
	ReadCall string
	// Replacement names the variable the embedded bytes are bound to.
	Replacement string
}

// DefaultPattern matches the loader emitted by wasm-bindgen for node targets.
func DefaultPattern() Pattern {
	return Pattern{
		Keywords:    []string{"const"},
		Variable:    "wasmPath",
		ReadCall:    "readFileSync",
		Replacement: "wasmBytes",
	}
}

// Validate checks that every token is a plain identifier.
func (p Pattern) Validate() error {
	if len(p.Keywords) == 0 {
		return fmt.Errorf("pattern: at least one keyword is required")
	}
	for _, kw := range p.Keywords {
		if !isIdentifier(kw) {
			return fmt.Errorf("pattern: invalid keyword %q", kw)
		}
	}
	if !isIdentifier(p.Variable) {
		return fmt.Errorf("pattern: invalid variable %q", p.Variable)
	}
	if !isIdentifier(p.ReadCall) {
		return fmt.Errorf("pattern: invalid read call %q", p.ReadCall)
	}
	if !isIdentifier(p.Replacement) {
		return fmt.Errorf("pattern: invalid replacement %q", p.Replacement)
	}
	return nil
}

// Match is the byte span [Start, End) of a load statement in a script.
type Match struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the match.
func (m Match) Len() int { return m.End - m.Start }

// FindLoadStatement locates the first load statement in src.
//
// The span opens at the first declaration of p.Variable that is followed by a
// read of it, and closes at the terminator of the nearest such read. Code
// after that statement is never included.
func FindLoadStatement(src string, p Pattern) (Match, bool) {
	start, declEnd, ok := p.nextDeclaration(src, 0)
	if !ok {
		return Match{}, false
	}
	// Any read after a later declaration is also after this one, so only
	// the first declaration needs checking.
	end, ok := p.readCallAfter(src, declEnd)
	if !ok {
		return Match{}, false
	}
	return Match{Start: start, End: end}, true
}

// nextDeclaration returns the first well-formed declaration at or after from.
func (p Pattern) nextDeclaration(src string, from int) (start, end int, ok bool) {
	for from < len(src) {
		start = -1
		var keyword string
		for _, kw := range p.Keywords {
			if i := indexToken(src, kw, from); i >= 0 && (start < 0 || i < start) {
				start, keyword = i, kw
			}
		}
		if start < 0 {
			return 0, 0, false
		}
		if end, ok = p.parseDeclaration(src, start+len(keyword)); ok {
			return start, end, true
		}
		from = start + 1
	}
	return 0, 0, false
}

// parseDeclaration parses " <variable> = <initializer>;" starting at i.
func (p Pattern) parseDeclaration(src string, i int) (int, bool) {
	j := skipSpace(src, i)
	if j == i {
		return 0, false
	}
	j, ok := expectIdent(src, j, p.Variable)
	if !ok {
		return 0, false
	}
	j = skipSpace(src, j)
	if j >= len(src) || src[j] != '=' {
		return 0, false
	}
	j++
	if j < len(src) && src[j] == '=' {
		return 0, false
	}
	return scanInitializer(src, j)
}

// readCallAfter finds the first "<read call>(<variable>);" at or after from
// and returns the offset just past its terminator.
func (p Pattern) readCallAfter(src string, from int) (int, bool) {
	for from < len(src) {
		i := indexToken(src, p.ReadCall, from)
		if i < 0 {
			return 0, false
		}
		if end, ok := p.parseReadCall(src, i+len(p.ReadCall)); ok {
			return end, true
		}
		from = i + 1
	}
	return 0, false
}

func (p Pattern) parseReadCall(src string, i int) (int, bool) {
	j := skipSpace(src, i)
	if j >= len(src) || src[j] != '(' {
		return 0, false
	}
	j = skipSpace(src, j+1)
	j, ok := expectIdent(src, j, p.Variable)
	if !ok {
		return 0, false
	}
	j = skipSpace(src, j)
	if j >= len(src) || src[j] != ')' {
		return 0, false
	}
	j = skipSpace(src, j+1)
	if j >= len(src) || src[j] != ';' {
		return 0, false
	}
	return j + 1, true
}

// Statement returns the statement that binds the decoded artifact.
func (p Pattern) Statement(encoded string) string {
	return "const " + p.Replacement + " = Buffer.from('" + encoded + "', 'base64');"
}

func (p Pattern) statementPrefix() string {
	return "const " + p.Replacement + " = Buffer.from('"
}

// Encode returns the text form of an artifact embedded in a script.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ExtractPayload finds the embedded statement in src and decodes its payload.
func ExtractPayload(src string, p Pattern) ([]byte, bool) {
	prefix := p.statementPrefix()
	i := strings.Index(src, prefix)
	if i < 0 {
		return nil, false
	}
	rest := src[i+len(prefix):]
	end := strings.Index(rest, "', 'base64');")
	if end < 0 {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(rest[:end])
	if err != nil {
		return nil, false
	}
	return data, true
}

// IsEmbedded reports whether src already carries an embedded artifact and no
// longer loads it from disk.
func IsEmbedded(src string, p Pattern) bool {
	if _, found := FindLoadStatement(src, p); found {
		return false
	}
	_, ok := ExtractPayload(src, p)
	return ok
}

// scanInitializer consumes an initializer up to its ';', skipping string
// literals and comments so a ';' or quote inside them does not end the
// statement early.
func scanInitializer(src string, i int) (int, bool) {
	nonBlank := false
	for i < len(src) {
		c := src[i]
		switch {
		case c == ';':
			return i + 1, nonBlank
		case c == '/' && i+1 < len(src) && (src[i+1] == '*' || src[i+1] == '/'):
			end, ok := skipComment(src, i)
			if !ok {
				return 0, false
			}
			i = end
			continue
		case c == '\'' || c == '"' || c == '`':
			end, ok := skipString(src, i)
			if !ok {
				return 0, false
			}
			i = end
			nonBlank = true
			continue
		case !isSpace(c):
			nonBlank = true
		}
		i++
	}
	return 0, false
}

// skipString returns the offset just past the literal opened at src[i].
func skipString(src string, i int) (int, bool) {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		case '\n':
			if quote != '`' {
				return 0, false
			}
		}
	}
	return 0, false
}

// skipComment returns the offset just past the comment opened at src[i].
// A line comment ends before its newline.
func skipComment(src string, i int) (int, bool) {
	if src[i+1] == '/' {
		nl := strings.IndexByte(src[i:], '\n')
		if nl < 0 {
			return 0, false
		}
		return i + nl, true
	}
	end := strings.Index(src[i+2:], "*/")
	if end < 0 {
		return 0, false
	}
	return i + 2 + end + 2, true
}

// indexToken finds tok at or after from where it is not part of a longer
// identifier. A preceding '.' is allowed so qualified calls match.
func indexToken(src, tok string, from int) int {
	for from <= len(src)-len(tok) {
		i := strings.Index(src[from:], tok)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(tok)
		if (i == 0 || !isIdentByte(src[i-1])) && (end == len(src) || !isIdentByte(src[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}

func expectIdent(src string, i int, ident string) (int, bool) {
	if !strings.HasPrefix(src[i:], ident) {
		return 0, false
	}
	end := i + len(ident)
	if end < len(src) && isIdentByte(src[end]) {
		return 0, false
	}
	return end, true
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || ('0' <= s[0] && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}
