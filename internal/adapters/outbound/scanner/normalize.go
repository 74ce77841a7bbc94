package scanner

import (
	"strings"

	"bitbucket.org/creachadair/stringset"
)

const generatedMarker = "[generated file]"

// Normalize turns `licensecheck -m` output into license names. Each line is
// "path<TAB>license<TAB>copyright"; the license column is kept, the generated
// file marker stripped, invalid values dropped and repeats collapsed to the
// first occurrence. Lines of any length are accepted.
func Normalize(output []byte, invalid []string) []string {
	drop := stringset.New(invalid...)
	seen := stringset.New()
	licenses := []string{}

	for line := range strings.Lines(string(output)) {
		l, ok := licenseColumn(strings.TrimRight(line, "\r\n"))
		if !ok {
			continue
		}
		l = strings.TrimSpace(strings.ReplaceAll(l, generatedMarker, ""))
		if drop.Contains(l) || seen.Contains(l) {
			continue
		}
		seen.Add(l)
		licenses = append(licenses, l)
	}
	return licenses
}

// licenseColumn returns the second of the last three tab-separated fields,
// so paths containing tabs do not shift the column.
func licenseColumn(line string) (string, bool) {
	last := strings.LastIndexByte(line, '\t')
	if last < 0 {
		return "", false
	}
	head, tail := line[:last], line[last+1:]
	prev := strings.LastIndexByte(head, '\t')
	if prev < 0 {
		return tail, true
	}
	return head[prev+1:], true
}
