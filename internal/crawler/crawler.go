package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"

	"codegraph/internal/entity"
	"codegraph/internal/lang"
)

// Crawler discovers parseable source files under a project root.
type Crawler struct {
	root    string
	ignored map[string]bool
}

func New(root string, extraIgnores ...string) *Crawler {
	ignored := map[string]bool{
		".git": true, "node_modules": true, "dist": true,
		"build": true, "coverage": true, "vendor": true,
	}
	for _, ign := range extraIgnores {
		if ign != "" {
			ignored[ign] = true
		}
	}
	return &Crawler{root: root, ignored: ignored}
}

// Scan walks the root and streams project-relative paths of TypeScript
// and JavaScript sources. Type declaration files (.d.ts) are skipped;
// they declare ambient shapes, not code the graph tracks.
func (c *Crawler) Scan(onFile func(rel string)) error {
	return filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if c.ignored[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !parseable(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		onFile(entity.NormalizePath(rel))
		return nil
	})
}

// Files collects every parseable path under the root.
func (c *Crawler) Files() ([]string, error) {
	var files []string
	err := c.Scan(func(rel string) {
		files = append(files, rel)
	})
	return files, err
}

func parseable(name string) bool {
	if strings.HasSuffix(name, ".d.ts") {
		return false
	}
	for _, ext := range lang.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
