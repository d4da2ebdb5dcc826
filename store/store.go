// Package store implements a small file-backed JSON document store. The
// on-disk layout is a single JSON object mapping table names to tables,
// where each table maps a document ID to a schemaless document:
//
//	{"_default": {"1": {"name": "A", "age": 20}, "2": {...}}}
//
// The whole file is read on Open and rewritten atomically after every
// mutation. This keeps the store safe for the short-lived CLI usage it is
// built for; it is not meant for concurrent writers across processes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// DefaultTable is the table used when no explicit table name is given.
const DefaultTable = "_default"

// ErrClosed is returned by any operation on a closed store.
var ErrClosed = errors.New("store is closed")

// Document is a single schemaless record.
type Document map[string]any

// Store is an open document store file.
type Store struct {
	path string

	mu     sync.Mutex
	closed bool
	tables map[string]map[int]Document
	nextID map[string]int
}

// Open reads the store file at path. A missing file is created empty so a
// fresh database can be populated with the first insert.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		tables: make(map[string]map[int]Document),
		nextID: make(map[string]int),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("cannot create store file: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read store file: %w", err)
	}

	if err := s.load(data); err != nil {
		return nil, fmt.Errorf("cannot parse store file %s: %w", path, err)
	}

	return s, nil
}

func (s *Store) load(data []byte) error {
	raw := make(map[string]map[string]Document)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for name, docs := range raw {
		table := make(map[int]Document, len(docs))
		for key, doc := range docs {
			id, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("table %s has non-integer document ID %q", name, key)
			}
			table[id] = doc
			if id >= s.nextID[name] {
				s.nextID[name] = id + 1
			}
		}
		s.tables[name] = table
	}

	return nil
}

// persist writes the full store state to disk. The write goes to a uniquely
// named temporary file first and is then renamed over the store file, so a
// crash mid-write never leaves a truncated database behind.
func (s *Store) persist() error {
	raw := make(map[string]map[string]Document, len(s.tables))
	for name, docs := range s.tables {
		table := make(map[string]Document, len(docs))
		for id, doc := range docs {
			table[strconv.Itoa(id)] = doc
		}
		raw[name] = table
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("cannot encode store: %w", err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write store file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot replace store file: %w", err)
	}

	return nil
}

// Table returns a handle on the named table. The table does not need to
// exist yet; it is materialized by the first insert.
func (s *Store) Table(name string) *Table {
	if name == "" {
		name = DefaultTable
	}
	return &Table{store: s, name: name}
}

// Close marks the store as closed. All state is already on disk, so this
// only guards against further use of the handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

// Table is a named collection of documents within a store.
type Table struct {
	store *Store
	name  string
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Search returns the documents matching the predicate, in document-ID order.
// A nil predicate matches everything.
func (t *Table) Search(pred func(Document) bool) ([]Document, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.closed {
		return nil, ErrClosed
	}

	matches := []Document{}
	for _, id := range t.sortedIDs() {
		doc := t.store.tables[t.name][id]
		if pred == nil || pred(doc) {
			matches = append(matches, doc)
		}
	}

	return matches, nil
}

// All returns every document in the table, in document-ID order.
func (t *Table) All() ([]Document, error) {
	return t.Search(nil)
}

// Insert adds a document and returns its assigned ID.
func (t *Table) Insert(doc Document) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.closed {
		return 0, ErrClosed
	}

	if t.store.tables[t.name] == nil {
		t.store.tables[t.name] = make(map[int]Document)
	}

	// Document IDs start at 1, matching the on-disk numbering.
	id := t.store.nextID[t.name]
	if id == 0 {
		id = 1
	}
	t.store.nextID[t.name] = id + 1
	t.store.tables[t.name][id] = doc

	if err := t.store.persist(); err != nil {
		delete(t.store.tables[t.name], id)
		t.store.nextID[t.name] = id
		return 0, err
	}

	return id, nil
}

// Update shallow-merges fields into every document matching the predicate
// and reports how many documents changed.
func (t *Table) Update(fields Document, pred func(Document) bool) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.closed {
		return 0, ErrClosed
	}

	updated := 0
	for id, doc := range t.store.tables[t.name] {
		if pred != nil && !pred(doc) {
			continue
		}
		for k, v := range fields {
			doc[k] = v
		}
		t.store.tables[t.name][id] = doc
		updated++
	}

	if updated == 0 {
		return 0, nil
	}

	if err := t.store.persist(); err != nil {
		return 0, err
	}

	return updated, nil
}

// Remove deletes every document matching the predicate and reports how many
// documents were removed. A nil predicate removes nothing.
func (t *Table) Remove(pred func(Document) bool) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.closed {
		return 0, ErrClosed
	}

	if pred == nil {
		return 0, nil
	}

	removed := 0
	for id, doc := range t.store.tables[t.name] {
		if pred(doc) {
			delete(t.store.tables[t.name], id)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}

	if err := t.store.persist(); err != nil {
		return 0, err
	}

	return removed, nil
}

func (t *Table) sortedIDs() []int {
	docs := t.store.tables[t.name]
	ids := make([]int, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
