package git

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"codegraph/internal/entity"
)

// ChangedFile is one file touched by a diff, with the line numbers that
// changed in the new version.
type ChangedFile struct {
	Path         string
	ChangedLines []int
}

// LineRanges groups the changed lines into contiguous ranges for the
// engine's partial-update mode. Byte offsets are unknown at this layer;
// consumers match on lines.
func (c ChangedFile) LineRanges() []entity.Range {
	if len(c.ChangedLines) == 0 {
		return nil
	}
	var ranges []entity.Range
	start, prev := c.ChangedLines[0], c.ChangedLines[0]
	for _, line := range c.ChangedLines[1:] {
		if line == prev+1 {
			prev = line
			continue
		}
		ranges = append(ranges, entity.Range{StartLine: start, EndLine: prev})
		start, prev = line, line
	}
	return append(ranges, entity.Range{StartLine: start, EndLine: prev})
}

// ChangedFiles diffs the working tree against baseRef with zero context
// lines and reports the changed files and lines.
func ChangedFiles(baseRef string) ([]ChangedFile, error) {
	cmd := exec.Command("git", "diff", "-U0", baseRef)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return parseDiff(output)
}

// hunkHeader matches "@@ -oldStart,oldLen +newStart,newLen @@"; only the
// new-side start and length matter here.
var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

func parseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var changes []ChangedFile
	var current *ChangedFile

	flush := func() {
		if current != nil {
			changes = append(changes, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			flush()
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				path := strings.TrimPrefix(parts[3], "b/")
				current = &ChangedFile{Path: entity.NormalizePath(path)}
			}
			continue
		}
		if current == nil || !strings.HasPrefix(line, "@@") {
			continue
		}

		matches := hunkHeader.FindStringSubmatch(line)
		if len(matches) < 2 {
			continue
		}
		start, _ := strconv.Atoi(matches[1])
		count := 1
		if matches[2] != "" {
			count, _ = strconv.Atoi(matches[2])
		}
		// count == 0 is a pure deletion: no lines exist at this position
		// in the new file.
		for i := 0; i < count; i++ {
			current.ChangedLines = append(current.ChangedLines, start+i)
		}
	}
	flush()

	return changes, scanner.Err()
}
