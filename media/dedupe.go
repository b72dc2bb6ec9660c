package media

import (
	"crypto/sha256"
	"fmt"
	"log"
	"os"
)

// RemoveDuplicates deletes byte-identical frames from the given list,
// keeping the earliest occurrence. Still videos produce long runs of
// identical frames; dropping them keeps the output (and any PDF built from
// it) useful. The input order is preserved in the returned survivors.
func RemoveDuplicates(framePaths []string) (kept []string, removed int) {
	if len(framePaths) <= 1 {
		return framePaths, 0
	}

	seen := make(map[[sha256.Size]byte]string, len(framePaths))
	for _, path := range framePaths {
		sum, err := hashFile(path)
		if err != nil {
			// Unreadable frame: keep it and let downstream consumers decide.
			log.Printf("media: hash %s: %v", path, err)
			kept = append(kept, path)
			continue
		}

		if _, dup := seen[sum]; dup {
			if err := os.Remove(path); err != nil {
				log.Printf("media: remove duplicate %s: %v", path, err)
				kept = append(kept, path)
				continue
			}
			removed++
			continue
		}

		seen[sum] = path
		kept = append(kept, path)
	}
	return kept, removed
}

// hashFile returns the SHA-256 digest of the file contents.
func hashFile(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	data, err := os.ReadFile(path)
	if err != nil {
		return sum, fmt.Errorf("read: %w", err)
	}
	return sha256.Sum256(data), nil
}
