package report

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements the Store interface using in-memory maps.
// Intended for tests and ephemeral use; nothing survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	records map[string][]*Record // keyed by run ID, in verdict order
}

// NewMemoryStore creates a new in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[string]*Run),
		records: make(map[string][]*Record),
	}
}

// StoreRun persists a run header to memory.
func (s *MemoryStore) StoreRun(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return NewStorageError("memory", "store_run", fmt.Errorf("run must have an ID"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid mutation
	runCopy := *run
	s.runs[run.ID] = &runCopy

	return nil
}

// StoreRecords persists per-pattern verdicts to memory.
func (s *MemoryStore) StoreRecords(ctx context.Context, records []*Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if record == nil || record.RunID == "" {
			return NewStorageError("memory", "store_records", fmt.Errorf("record must reference a run"))
		}

		recordCopy := *record
		s.records[record.RunID] = append(s.records[record.RunID], &recordCopy)
	}

	return nil
}

// GetRun retrieves a single run by ID.
func (s *MemoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, NewStorageError("memory", "get_run", fmt.Errorf("run %s: %w", id, ErrRunNotFound))
	}

	runCopy := *run
	return &runCopy, nil
}

// Runs retrieves run headers matching the query, newest first.
func (s *MemoryStore) Runs(ctx context.Context, query *Query) ([]*Run, error) {
	if err := query.Validate(); err != nil {
		return nil, NewStorageError("memory", "query_runs", err)
	}

	s.mu.RLock()
	results := []*Run{}
	for _, run := range s.runs {
		if matchesRun(run, query) {
			runCopy := *run
			results = append(results, &runCopy)
		}
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})

	return paginateRuns(results, query), nil
}

// Records retrieves verdicts matching the query in the order the
// patterns were checked.
func (s *MemoryStore) Records(ctx context.Context, query *Query) ([]*Record, error) {
	if err := query.Validate(); err != nil {
		return nil, NewStorageError("memory", "query_records", err)
	}

	s.mu.RLock()
	results := []*Record{}
	if query.RunID != "" {
		for _, record := range s.records[query.RunID] {
			if matchesRecord(record, query) {
				recordCopy := *record
				results = append(results, &recordCopy)
			}
		}
	} else {
		for _, runRecords := range s.records {
			for _, record := range runRecords {
				if matchesRecord(record, query) {
					recordCopy := *record
					results = append(results, &recordCopy)
				}
			}
		}
	}
	s.mu.RUnlock()

	// Oldest first; ties keep insert order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})

	return paginateRecords(results, query), nil
}

// CountRuns returns the number of runs matching the query filters.
func (s *MemoryStore) CountRuns(ctx context.Context, query *Query) (int64, error) {
	if err := query.Validate(); err != nil {
		return 0, NewStorageError("memory", "count_runs", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, run := range s.runs {
		if matchesRun(run, query) {
			count++
		}
	}

	return count, nil
}

// DeleteRunsBefore removes runs completed before the cutoff along with
// their records.
func (s *MemoryStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.CompletedAt.Before(cutoff) {
			delete(s.runs, id)
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources held by the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]*Run)
	s.records = make(map[string][]*Record)
	return nil
}

// matchesRun checks if a run matches the query filters.
func matchesRun(run *Run, query *Query) bool {
	if query.RunID != "" && run.ID != query.RunID {
		return false
	}
	if query.Since != nil && run.StartedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && !run.CompletedAt.Before(*query.Until) {
		return false
	}
	if query.OnlyInvalid && run.Stats.Invalid == 0 {
		return false
	}
	return true
}

// matchesRecord checks if a record matches the query filters.
func matchesRecord(record *Record, query *Query) bool {
	if query.RunID != "" && record.RunID != query.RunID {
		return false
	}
	if query.PatternName != "" && record.PatternName != query.PatternName {
		return false
	}
	if query.Since != nil && record.CreatedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && !record.CreatedAt.Before(*query.Until) {
		return false
	}
	if query.OnlyInvalid && record.Valid {
		return false
	}
	return true
}

// paginateRuns applies offset and limit to a sorted result set.
func paginateRuns(results []*Run, query *Query) []*Run {
	limit := query.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	start := query.Offset
	if start > len(results) {
		return []*Run{}
	}

	end := start + limit
	if end > len(results) {
		end = len(results)
	}

	return results[start:end]
}

// paginateRecords applies offset and limit to a sorted result set.
func paginateRecords(results []*Record, query *Query) []*Record {
	limit := query.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	start := query.Offset
	if start > len(results) {
		return []*Record{}
	}

	end := start + limit
	if end > len(results) {
		end = len(results)
	}

	return results[start:end]
}

// Clear removes all runs and records from the store (for testing).
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]*Run)
	s.records = make(map[string][]*Record)
}

// RunCount returns the number of stored runs (for testing).
func (s *MemoryStore) RunCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.runs)
}

// RecordCount returns the total number of stored records (for testing).
func (s *MemoryStore) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, runRecords := range s.records {
		n += len(runRecords)
	}
	return n
}
