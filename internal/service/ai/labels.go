package ai

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultLabels is the class table of the bundled single-class model.
var DefaultLabels = Labels{"Gun"}

// Labels maps a model class index to its human-readable name.
type Labels []string

// LoadLabels reads one label per line from path, skipping blank lines.
// An empty path yields DefaultLabels.
func LoadLabels(path string) (Labels, error) {
	if path == "" {
		return DefaultLabels, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels file: %w", err)
	}
	defer file.Close()

	var labels Labels
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels file: %w", err)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}

// Name returns the label for classID, or "class_<id>" when the index is outside the table.
func (l Labels) Name(classID int) string {
	if classID >= 0 && classID < len(l) {
		return l[classID]
	}
	return fmt.Sprintf("class_%d", classID)
}
