package entity

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FileID derives the deterministic entity ID for a file path.
func FileID(relPath string) string {
	return "file:" + NormalizePath(relPath)
}

// DirectoryID derives the deterministic entity ID for a directory path.
func DirectoryID(relPath string) string {
	return "dir:" + NormalizePath(relPath)
}

// SymbolID derives the deterministic entity ID for a symbol.
// The ID is "sym:<fileRelPath>#<name>@<hash>" where hash is the first
// 8 hex characters of the SHA-1 of the canonicalized signature text.
// Re-parsing unchanged code yields byte-identical IDs.
func SymbolID(fileRel, name, signature string) string {
	sig := canonicalizeSignature(signature)
	if sig == "" {
		sig = name
	}
	sum := sha1.Sum([]byte(sig))
	return fmt.Sprintf("sym:%s#%s@%s", NormalizePath(fileRel), name, hex.EncodeToString(sum[:4]))
}

// SymbolPath builds the "<fileRelPath>:<name>" lookup key.
func SymbolPath(fileRel, name string) string {
	return NormalizePath(fileRel) + ":" + name
}

// ContentHash is the SHA-256 hex digest of file content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// NormalizePath converts a path to slash-separated project-relative form.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	return p
}

func canonicalizeSignature(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}

// NewFile builds a File entity from path and content.
func NewFile(relPath string, content []byte, language string) File {
	rel := NormalizePath(relPath)
	return File{
		ID:       FileID(rel),
		Path:     rel,
		Hash:     ContentHash(content),
		Language: language,
		Size:     len(content),
		Lines:    countLines(content),
		IsTest:   IsTestPath(rel),
		IsConfig: IsConfigPath(rel),
	}
}

// NewDirectory builds a Directory entity for the given relative path.
func NewDirectory(relPath string) Directory {
	rel := NormalizePath(relPath)
	depth := 0
	if rel != "." && rel != "" {
		depth = strings.Count(rel, "/") + 1
	}
	return Directory{
		ID:    DirectoryID(rel),
		Path:  rel,
		Depth: depth,
	}
}

// IsTestPath reports whether a file path looks like a test file.
func IsTestPath(rel string) bool {
	base := path.Base(rel)
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	return strings.Contains(rel, "__tests__/") || strings.HasPrefix(rel, "test/") || strings.Contains(rel, "/test/")
}

// IsConfigPath reports whether a file path looks like build or tool config.
func IsConfigPath(rel string) bool {
	base := strings.ToLower(path.Base(rel))
	for _, marker := range []string{".config.", ".rc.", "config."} {
		if strings.Contains(base, marker) {
			return true
		}
	}
	return false
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}
