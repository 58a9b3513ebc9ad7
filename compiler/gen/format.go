package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// Parsers understood by the formatters.
const (
	ParserTypeScript = "typescript"
	ParserGraphQL    = "graphql"
	ParserJSON       = "json"
)

// Formatter formats generated text for the given parser.
type Formatter interface {
	Format(ctx context.Context, text, parser string) (string, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc func(ctx context.Context, text, parser string) (string, error)

// Format implements Formatter.
func (f FormatterFunc) Format(ctx context.Context, text, parser string) (string, error) {
	return f(ctx, text, parser)
}

// Style is the layout applied by TextFormatter.
type Style struct {
	Indent       string
	EOL          string
	FinalNewline bool
}

// DefaultStyle indents with two spaces and uses LF line endings.
var DefaultStyle = Style{Indent: "  ", EOL: "\n", FinalNewline: true}

// StyleFor resolves the .editorconfig settings that apply to path, falling
// back to DefaultStyle for unset properties.
func StyleFor(path string) (Style, error) {
	style := DefaultStyle
	if path == "" {
		return style, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return style, err
	}
	def, err := editorconfig.GetDefinitionForFilename(abs)
	if err != nil {
		return style, fmt.Errorf("read editorconfig for %s: %w", path, err)
	}
	size := 2
	if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
		size = n
	}
	switch def.IndentStyle {
	case editorconfig.IndentStyleTab:
		style.Indent = "\t"
	case editorconfig.IndentStyleSpaces:
		style.Indent = strings.Repeat(" ", size)
	default:
		if def.IndentSize != "" {
			style.Indent = strings.Repeat(" ", size)
		}
	}
	if def.EndOfLine == editorconfig.EndOfLineCrLf {
		style.EOL = "\r\n"
	}
	if def.InsertFinalNewline != nil {
		style.FinalNewline = *def.InsertFinalNewline
	}
	return style, nil
}

// ErrUnbalanced is returned by TextFormatter for text whose brackets do not
// match.
var ErrUnbalanced = errors.New("unbalanced brackets")

// TextFormatter is the default Formatter. For TypeScript it re-indents lines
// by bracket depth, skipping strings, template literals and comments, and
// collapses runs of blank lines. JSON is indented with encoding/json and
// GraphQL is printed by gqlparser.
type TextFormatter struct {
	// Path is the target file, used to resolve .editorconfig. Empty means
	// DefaultStyle.
	Path string
}

// Format implements Formatter.
func (f TextFormatter) Format(_ context.Context, text, parser string) (string, error) {
	style, err := StyleFor(f.Path)
	if err != nil {
		return "", err
	}
	var out string
	switch parser {
	case ParserTypeScript, "":
		out, err = reindent(text, style.Indent)
	case ParserJSON:
		var buf bytes.Buffer
		if err = json.Indent(&buf, []byte(text), "", style.Indent); err == nil {
			out = buf.String()
		}
	case ParserGraphQL:
		out, err = formatGraphQL(text, style.Indent)
	default:
		return "", fmt.Errorf("unsupported parser %q", parser)
	}
	if err != nil {
		return "", err
	}
	out = strings.TrimRight(out, "\n")
	if style.FinalNewline {
		out += "\n"
	}
	if style.EOL != "\n" {
		out = strings.ReplaceAll(out, "\n", style.EOL)
	}
	return out, nil
}

func formatGraphQL(text, indent string) (string, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: text})
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent(indent)).FormatSchema(schema)
	return buf.String(), nil
}

// reindent rewrites the leading whitespace of every line to match the
// bracket depth at its start. A line starting with closing brackets is
// dedented by them.
func reindent(text, indent string) (string, error) {
	var (
		b        strings.Builder
		sc       scanner
		blank    bool
		wroteAny bool
	)
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if sc.inString() {
			// continuation of a template literal or block comment
			if sc.mode == modeBlockComment {
				line := strings.TrimSpace(raw)
				b.WriteString(strings.Repeat(indent, sc.depth()))
				if strings.HasPrefix(line, "*") {
					b.WriteString(" ")
				}
				b.WriteString(line)
			} else {
				b.WriteString(raw)
			}
			b.WriteByte('\n')
			if err := sc.scan(raw); err != nil {
				return "", err
			}
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			if wroteAny && !blank {
				b.WriteByte('\n')
			}
			blank = true
			continue
		}
		blank = false
		wroteAny = true
		depth := sc.depth() - leadingClosers(line)
		if depth < 0 {
			return "", fmt.Errorf("%w: unexpected %q", ErrUnbalanced, line)
		}
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteString(line)
		b.WriteByte('\n')
		if err := sc.scan(line); err != nil {
			return "", err
		}
	}
	if sc.depth() != 0 {
		return "", fmt.Errorf("%w: %d unclosed", ErrUnbalanced, sc.depth())
	}
	return b.String(), nil
}

func leadingClosers(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case '}', ')', ']':
			n++
		default:
			return n
		}
	}
	return n
}

type scanMode int

const (
	modeCode scanMode = iota
	modeTemplate
	modeBlockComment
)

// scanner tracks bracket nesting across lines.
type scanner struct {
	stack []byte
	mode  scanMode
}

func (s *scanner) depth() int     { return len(s.stack) }
func (s *scanner) inString() bool { return s.mode != modeCode }

var closers = map[byte]byte{'}': '{', ')': '(', ']': '['}

func (s *scanner) scan(line string) error {
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch s.mode {
		case modeTemplate:
			if c == '\\' {
				i++
			} else if c == '`' {
				s.mode = modeCode
			}
			continue
		case modeBlockComment:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.mode = modeCode
				i++
			}
			continue
		}
		switch c {
		case '"', '\'':
			i = skipQuoted(line, i)
		case '`':
			s.mode = modeTemplate
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return nil
			}
			if i+1 < len(line) && line[i+1] == '*' {
				s.mode = modeBlockComment
				i++
			}
		case '{', '(', '[':
			s.stack = append(s.stack, c)
		case '}', ')', ']':
			if len(s.stack) == 0 || s.stack[len(s.stack)-1] != closers[c] {
				return fmt.Errorf("%w: unexpected %q in %q", ErrUnbalanced, c, line)
			}
			s.stack = s.stack[:len(s.stack)-1]
		}
	}
	return nil
}

// skipQuoted returns the index of the quote closing the string that opens at
// i, or the last index of line when the string is not closed.
func skipQuoted(line string, i int) int {
	q := line[i]
	for j := i + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(line) - 1
}

// ExecFormatter formats through an external command such as prettier. The
// text is written to stdin and the formatted result read from stdout.
type ExecFormatter struct {
	// Command and Args start the formatter. The parser is appended as
	// "--parser <parser>".
	Command string
	Args    []string
}

// Prettier returns an ExecFormatter running prettier through npx.
func Prettier() ExecFormatter {
	return ExecFormatter{Command: "npx", Args: []string{"--no-install", "prettier"}}
}

// Format implements Formatter.
func (f ExecFormatter) Format(ctx context.Context, text, parser string) (string, error) {
	args := append(append([]string{}, f.Args...), "--parser", parser)
	cmd := exec.CommandContext(ctx, f.Command, args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", f.Command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
