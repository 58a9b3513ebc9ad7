// Package load discovers GraphQL source files and turns them into the
// ordered schema fragments consumed by the generator.
package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// Extensions lists the file extensions treated as GraphQL documents.
var Extensions = []string{".graphql", ".graphqls", ".gql"}

// File is a GraphQL document read from disk.
type File struct {
	Path    string
	Content string
}

// maxConcurrentReads bounds the number of files read at once.
const maxConcurrentReads = 16

// LoadFiles reads every GraphQL file matched by patterns.
//
// Patterns use doublestar syntax. A pattern naming a directory matches every
// GraphQL file below it, and a pattern prefixed with "!" excludes the files
// it matches. Matches of one pattern are sorted; patterns keep their order,
// and a file matched by several patterns is read once. Zero matches is not
// an error.
func LoadFiles(ctx context.Context, patterns []string) ([]File, error) {
	paths, err := Glob(patterns)
	if err != nil {
		return nil, err
	}
	files := make([]File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("load: read %s: %w", path, err)
			}
			files[i] = File{Path: path, Content: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Glob expands patterns into the ordered list of GraphQL files they match.
func Glob(patterns []string) ([]string, error) {
	var (
		include []string
		exclude []string
	)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case strings.HasPrefix(p, "!"):
			exclude = append(exclude, filepath.ToSlash(filepath.Clean(expandDir(p[1:]))))
		default:
			include = append(include, expandDir(p))
		}
	}
	var (
		paths []string
		seen  = make(map[string]bool)
	)
	for _, p := range include {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("load: invalid pattern %q: %w", p, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if seen[m] || !IsGraphQLFile(m) || excluded(exclude, m) {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	return paths, nil
}

// IsGraphQLFile reports whether path has a GraphQL extension.
func IsGraphQLFile(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// expandDir turns a pattern naming an existing directory into a pattern
// matching every file below it.
func expandDir(pattern string) string {
	if strings.ContainsAny(pattern, "*?[{") {
		return pattern
	}
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		return filepath.Join(pattern, "**", "*")
	}
	return pattern
}

func excluded(patterns []string, path string) bool {
	slash := filepath.ToSlash(filepath.Clean(path))
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, slash); ok {
			return true
		}
	}
	return false
}

// Normalize trims content and converts CRLF line endings to LF.
func Normalize(content string) string {
	return strings.ReplaceAll(strings.TrimSpace(content), "\r\n", "\n")
}

// Fragments normalizes files and drops the empty ones, keeping their order.
func Fragments(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if s := Normalize(f.Content); s != "" {
			out = append(out, s)
		}
	}
	return out
}
