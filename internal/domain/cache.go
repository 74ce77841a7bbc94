package domain

// CacheEntry is the persisted outcome of scanning one element at one content key.
// Entries are written once and never modified.
type CacheEntry struct {
	Ref        ElementRef     `json:"dependency-name"`
	Key        ContentKey     `json:"full-key"`
	Status     CheckoutStatus `json:"checkout-status"`
	Diagnostic string         `json:"diagnostic,omitempty"`
	Licenses   []string       `json:"detected-licenses"`
	// OutputFile is the basename of the raw scanner payload inside the cache
	// directory. Empty when the element had no sources.
	OutputFile string `json:"output-filename,omitempty"`
}

// Matches reports whether the entry belongs to exactly this element and key.
func (c *CacheEntry) Matches(ref ElementRef, key ContentKey) bool {
	return c.Ref == ref && c.Key == key
}

// Result rebuilds the in-memory scan result; payloadPath is the absolute
// location of the raw output, resolved by the store.
func (c *CacheEntry) Result(payloadPath string) ScanResult {
	return ScanResult{
		Ref:        c.Ref,
		Key:        c.Key,
		Status:     c.Status,
		Diagnostic: c.Diagnostic,
		Licenses:   append([]string(nil), c.Licenses...),
		OutputPath: payloadPath,
		FromCache:  true,
	}
}
