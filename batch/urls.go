package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// commentMarker prefixes ignored lines in a batch file.
const commentMarker = "#"

// ReadURLList reads a batch file: one URL per line, blank lines and lines
// starting with '#' ignored, order preserved.
func ReadURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	return urls, nil
}
