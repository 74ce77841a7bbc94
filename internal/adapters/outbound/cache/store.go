package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

const (
	entrySuffix   = ".licensecheck.json"
	payloadSuffix = ".licensecheck_output.txt"
)

// ErrNotCacheable is returned by Store for outcomes that depend on more than
// the content key.
var ErrNotCacheable = errors.New("outcome is not cacheable")

// CollisionError means two element names flatten to the same file name and
// the slot is already held by the other element.
type CollisionError struct {
	Path  string
	Owner domain.ElementRef
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("cache slot %s already belongs to %s", filepath.Base(e.Path), e.Owner)
}

// Store is a directory-backed implementation of domain.ScanCache. Each entry
// lives at a path derived from (element, full key), so existence of the file
// is the hit test and no index is kept. Entries are never rewritten.
type Store struct {
	dir string
	log logger.Logger
}

// New creates a store rooted at dir, typically the --work directory.
func New(dir string, log logger.Logger) *Store {
	return &Store{dir: dir, log: logger.Named(log, "cache")}
}

// Dir returns the directory holding the entries.
func (s *Store) Dir() string { return s.dir }

// Location returns the entry path for ref at key.
func (s *Store) Location(ref domain.ElementRef, key domain.ContentKey) string {
	return filepath.Join(s.dir, baseName(ref, key)+entrySuffix)
}

// PayloadPath returns the absolute path of entry's raw scanner output, or ""
// when the entry has none.
func (s *Store) PayloadPath(entry *domain.CacheEntry) string {
	if entry == nil || entry.OutputFile == "" {
		return ""
	}
	return filepath.Join(s.dir, entry.OutputFile)
}

// Lookup returns the entry for exactly ref and key, or (nil, nil) on a miss.
// Unreadable entries and entries whose payload has gone missing count as
// misses so the element gets rescanned.
func (s *Store) Lookup(ref domain.ElementRef, key domain.ContentKey) (*domain.CacheEntry, error) {
	if !key.Cacheable() {
		return nil, nil
	}
	path := s.Location(ref, key)
	entry, err := readEntry(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		if errors.As(err, &syn) || errors.As(err, &typ) {
			s.log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable cache entry")
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	if !entry.Matches(ref, key) {
		s.log.Warn().Str("element", string(ref)).Str("owner", string(entry.Ref)).Msg("cache slot held by another element")
		return nil, nil
	}
	if p := s.PayloadPath(entry); p != "" {
		if _, err := os.Stat(p); err != nil {
			s.log.Warn().Str("element", string(ref)).Str("payload", entry.OutputFile).Msg("cache payload missing, rescanning")
			return nil, nil
		}
	}
	return entry, nil
}

// Store persists entry and its raw payload with create-if-absent semantics.
// It reports false when a matching entry already existed. Concurrent writers
// for the same key are safe: exactly one of them publishes the entry.
func (s *Store) Store(entry domain.CacheEntry, raw []byte) (bool, error) {
	if !entry.Key.Cacheable() || !entry.Status.Cacheable() {
		return false, ErrNotCacheable
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("creating cache directory: %w", err)
	}

	entry.OutputFile = ""
	if raw != nil {
		entry.OutputFile = baseName(entry.Ref, entry.Key) + payloadSuffix
		if _, err := createIfAbsent(filepath.Join(s.dir, entry.OutputFile), raw); err != nil {
			return false, fmt.Errorf("writing cache payload: %w", err)
		}
	}
	if entry.Licenses == nil {
		entry.Licenses = []string{}
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encoding cache entry: %w", err)
	}
	path := s.Location(entry.Ref, entry.Key)
	created, err := createIfAbsent(path, data)
	if err != nil {
		return false, fmt.Errorf("writing cache entry: %w", err)
	}
	if created {
		return true, nil
	}

	existing, err := readEntry(path)
	if err != nil {
		// A torn or foreign file under our name; ours is complete.
		s.log.Warn().Err(err).Str("path", path).Msg("replacing unreadable cache entry")
		if err := replaceAtomic(path, data); err != nil {
			return false, fmt.Errorf("repairing cache entry: %w", err)
		}
		return true, nil
	}
	if !existing.Matches(entry.Ref, entry.Key) {
		return false, &CollisionError{Path: path, Owner: existing.Ref}
	}
	return false, nil
}

// List returns every entry stored for ref, in file name order.
func (s *Store) List(ref domain.ElementRef) ([]domain.CacheEntry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	prefix := ref.FlatName() + "--"
	var out []domain.CacheEntry
	for _, d := range dirents {
		name := d.Name()
		if d.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, entrySuffix) {
			continue
		}
		entry, err := readEntry(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Debug().Err(err).Str("file", name).Msg("skipping unreadable cache entry")
			continue
		}
		if entry.Ref != ref {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

func readEntry(path string) (*domain.CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func baseName(ref domain.ElementRef, key domain.ContentKey) string {
	return ref.FlatName() + "--" + strings.ReplaceAll(string(key), "/", "-")
}
