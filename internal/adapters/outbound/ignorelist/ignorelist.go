// Package ignorelist reads the element ignore list file.
package ignorelist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// Load reads one element name per line. Blank lines and lines whose first
// non-space character is '#' are skipped. An empty path yields an empty set.
// Any read failure is a configuration error.
func Load(path string) (domain.IgnoreSet, error) {
	if path == "" {
		return domain.NewIgnoreSet(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.IgnoreSet{}, domain.ConfigError("ignore list", err)
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return domain.IgnoreSet{}, domain.ConfigError("ignore list", fmt.Errorf("reading %s: %w", path, err))
	}
	return set, nil
}

// Parse reads an ignore list from r.
func Parse(r io.Reader) (domain.IgnoreSet, error) {
	var refs []domain.ElementRef
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, domain.ElementRef(line))
	}
	if err := sc.Err(); err != nil {
		return domain.IgnoreSet{}, err
	}
	return domain.NewIgnoreSet(refs...), nil
}
