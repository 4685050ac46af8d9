package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/goliatone/go-folio/internal/content"
)

// DefaultPatterns select the collection's source files relative to the
// content root.
var DefaultPatterns = []string{"blog/**/*.mdx", "blog/**/*.md"}

// LoaderConfig configures how source files are discovered.
type LoaderConfig struct {
	// Root is the directory inside the filesystem that holds the content tree.
	Root string
	// Patterns are glob expressions relative to Root. "**" crosses directories.
	Patterns []string
}

// Source is one discovered file, read but not yet parsed.
type Source struct {
	// Path is the file path relative to the content root, with extension.
	Path string
	// SourcePath is Path normalised into a document key.
	SourcePath string
	Data       []byte
	ModTime    time.Time
	Checksum   [sha256.Size]byte
}

// Loader walks an fs.FS and returns the sources matching its patterns.
type Loader struct {
	fs       fs.FS
	root     string
	patterns []glob.Glob
}

// NewLoader compiles the configured patterns. Each pattern containing
// "/**/" also matches files directly inside the prefix directory.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) (*Loader, error) {
	if filesystem == nil {
		return nil, fmt.Errorf("markdown loader: filesystem is required")
	}
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	compiled := make([]glob.Glob, 0, len(patterns)*2)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "/")
		if pattern == "" {
			continue
		}
		variants := []string{pattern}
		if strings.Contains(pattern, "/**/") {
			variants = append(variants, strings.Replace(pattern, "/**/", "/", 1))
		}
		for _, variant := range variants {
			g, err := glob.Compile(variant, '/')
			if err != nil {
				return nil, fmt.Errorf("markdown loader: compile pattern %q: %w", pattern, err)
			}
			compiled = append(compiled, g)
		}
	}

	root := path.Clean("/" + strings.TrimSpace(cfg.Root))
	root = strings.TrimPrefix(root, "/")
	if root == "" {
		root = "."
	}

	return &Loader{fs: filesystem, root: root, patterns: compiled}, nil
}

// Load returns every matching source sorted by path.
func (l *Loader) Load(ctx context.Context) ([]Source, error) {
	var sources []Source

	err := fs.WalkDir(l.fs, l.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		rel := l.relative(p)
		if !l.matches(rel) {
			return nil
		}
		src, err := l.read(p, rel)
		if err != nil {
			return err
		}
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})
	return sources, nil
}

// LoadFile reads one file given its path relative to the content root.
func (l *Loader) LoadFile(ctx context.Context, rel string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	return l.read(path.Join(l.root, rel), rel)
}

func (l *Loader) read(fullPath, rel string) (Source, error) {
	data, err := fs.ReadFile(l.fs, fullPath)
	if err != nil {
		return Source{}, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}
	info, err := fs.Stat(l.fs, fullPath)
	if err != nil {
		return Source{}, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}
	return Source{
		Path:       rel,
		SourcePath: content.NormalizeSourcePath(rel),
		Data:       data,
		ModTime:    info.ModTime(),
		Checksum:   sha256.Sum256(data),
	}, nil
}

func (l *Loader) relative(p string) string {
	if l.root == "." {
		return p
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, l.root), "/")
}

func (l *Loader) matches(rel string) bool {
	for _, g := range l.patterns {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
