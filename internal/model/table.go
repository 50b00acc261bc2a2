package model

import (
	"encoding/json"
	"sort"
	"sync"
)

// StatusTable maps absolute URLs to their LinkRecord.
//
// It is written concurrently by the verifier (one write per URL) and is
// read-only once verification has finished. The analyzer mutates the
// records it holds but never the table itself.
type StatusTable struct {
	mu      sync.RWMutex
	records map[string]*LinkRecord
}

// NewStatusTable creates an empty StatusTable.
func NewStatusTable() *StatusTable {
	return &StatusTable{
		records: make(map[string]*LinkRecord),
	}
}

// Set stores the record for url, replacing any previous one.
func (t *StatusTable) Set(url string, record *LinkRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[url] = record
}

// Get returns the record for url.
func (t *StatusTable) Get(url string) (*LinkRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.records[url]
	return r, ok
}

// Len returns the number of records.
func (t *StatusTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// URLs returns all URLs in ascending order.
func (t *StatusTable) URLs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	urls := make([]string, 0, len(t.records))
	for u := range t.records {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Each calls fn for every record in ascending URL order.
// fn must not call Set on the same table.
func (t *StatusTable) Each(fn func(url string, record *LinkRecord)) {
	for _, u := range t.URLs() {
		r, _ := t.Get(u)
		fn(u, r)
	}
}

// MarshalJSON encodes the table as a JSON object keyed by URL.
func (t *StatusTable) MarshalJSON() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return json.Marshal(t.records)
}

// UnmarshalJSON decodes a JSON object keyed by URL.
func (t *StatusTable) UnmarshalJSON(data []byte) error {
	records := make(map[string]*LinkRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = records
	return nil
}
