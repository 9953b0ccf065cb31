// Package store provides the TableSource/TableSink implementations:
// sqlite (로컬 스냅샷), postgres, and an in-memory fixture store for tests.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/jini/internal/contracts"
)

// Memory is an in-memory store, 파이프라인 테스트 픽스처용.
// TableSource/TableSink/RawSink/RegionRepository/StatsReader 전부 구현.
type Memory struct {
	mu      sync.RWMutex
	tables  map[string]*contracts.RawBatch
	regions []contracts.RegionRow
	stats   map[string][]contracts.GroupStat
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string]*contracts.RawBatch),
		stats:  make(map[string][]contracts.GroupStat),
	}
}

// SetTable installs a raw table snapshot.
func (m *Memory) SetTable(name string, batch *contracts.RawBatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name] = batch
}

// SetRegions installs the code reference rows.
func (m *Memory) SetRegions(rows []contracts.RegionRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = rows
}

// LoadTransactions implements contracts.TableSource.
func (m *Memory) LoadTransactions(_ context.Context, table string) (*contracts.RawBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	batch, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	return batch, nil
}

// LoadRegionCodes implements contracts.RegionRepository.
func (m *Memory) LoadRegionCodes(_ context.Context) ([]contracts.RegionRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.regions, nil
}

// SaveStats implements contracts.TableSink.
func (m *Memory) SaveStats(_ context.Context, table string, stats []contracts.GroupStat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[table] = append([]contracts.GroupStat(nil), stats...)
	return nil
}

// SaveRawBatch implements contracts.RawSink (append semantics).
func (m *Memory) SaveRawBatch(_ context.Context, table string, batch *contracts.RawBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tables[table]
	if !ok {
		copied := *batch
		copied.Table = table
		m.tables[table] = &copied
		return nil
	}
	existing.Rows = append(existing.Rows, batch.Rows...)
	return nil
}

// LoadStats implements contracts.StatsReader.
func (m *Memory) LoadStats(_ context.Context, table string, year int, regionCode string) ([]contracts.GroupStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []contracts.GroupStat
	for _, s := range m.stats[table] {
		if year != 0 && s.Year != year {
			continue
		}
		if regionCode != "" && s.RegionCode != regionCode {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Stats returns the saved result table, 테스트 검증용.
func (m *Memory) Stats(table string) []contracts.GroupStat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats[table]
}
