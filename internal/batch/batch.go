// Package batch holds the bridge's in-memory conversational state: the
// proposal awaiting a keep decision and the last task list posted for
// update commands. Nothing here survives a restart.
package batch

import (
	"sync"
	"time"

	"github.com/ludvigisaksen/PA-AI/internal/command"
	"github.com/ludvigisaksen/PA-AI/internal/domain"
)

// PendingBatch is the most recent proposal nobody has confirmed yet.
type PendingBatch struct {
	Tasks     []domain.ProposedTask
	SourceRef *string
	Meta      *domain.EventMeta
}

func (p PendingBatch) IsEmpty() bool {
	return len(p.Tasks) == 0
}

// ListedTasks is the most recent actionable list posted to the inbox.
type ListedTasks struct {
	Tasks     []domain.ListedTask
	PostedAt  time.Time
	MessageID *string
}

func (l ListedTasks) IsEmpty() bool {
	return len(l.Tasks) == 0
}

// Store guards both pieces of state with one mutex so overlapping handlers
// serialize their reads and writes. Every accessor hands out copies.
type Store struct {
	mu         sync.Mutex
	pending    PendingBatch
	generation uint64
	listed     ListedTasks
}

func NewStore() *Store {
	return &Store{}
}

// Pending returns a snapshot of the pending batch and its generation.
func (s *Store) Pending() (PendingBatch, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPending(s.pending), s.generation
}

// ReplacePending overwrites the pending batch wholesale. An unconfirmed
// batch is dropped without notice; the newest proposal always wins.
func (s *Store) ReplacePending(batch PendingBatch) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = copyPending(batch)
	s.generation++
	return s.generation
}

// ResetPending empties the pending batch.
func (s *Store) ResetPending() {
	s.ReplacePending(PendingBatch{})
}

// ClearPending empties the batch only if it is still the one identified by
// generation, so a proposal posted while a keep was being persisted survives.
func (s *Store) ClearPending(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return false
	}
	s.pending = PendingBatch{}
	s.generation++
	return true
}

// Select picks the tasks a keep command refers to, in ascending position
// order. Out-of-range positions are skipped.
func (p PendingBatch) Select(cmd command.Command) []domain.ProposedTask {
	switch cmd.Kind {
	case command.KindKeepAll:
		return append([]domain.ProposedTask(nil), p.Tasks...)
	case command.KindKeepIndices:
		selected := make([]domain.ProposedTask, 0, len(cmd.Indices))
		for _, idx := range cmd.Indices {
			if idx < 1 || idx > len(p.Tasks) {
				continue
			}
			selected = append(selected, p.Tasks[idx-1])
		}
		return selected
	}
	return nil
}

// Listed returns a snapshot of the last posted list.
func (s *Store) Listed() ListedTasks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyListed(s.listed)
}

func (s *Store) ReplaceListed(listed ListedTasks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed = copyListed(listed)
}

// MergeListed patches cached entries with records returned by the state
// API, matching on id. Records with no cached counterpart are ignored.
// It returns how many cached entries changed.
func (s *Store) MergeListed(updated []domain.Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]domain.Task, len(updated))
	for _, t := range updated {
		if t.ID != nil {
			byID[*t.ID] = t
		}
	}

	merged := 0
	for i, cached := range s.listed.Tasks {
		if cached.ID == nil {
			continue
		}
		fresh, ok := byID[*cached.ID]
		if !ok {
			continue
		}
		s.listed.Tasks[i].Task = fresh
		merged++
	}
	return merged
}

// Positions keeps the 1-based positions that exist in the cached list, in
// input order.
func (l ListedTasks) Positions(indices []int) []int {
	positions := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(l.Tasks) {
			continue
		}
		positions = append(positions, idx)
	}
	return positions
}

// Resolve maps 1-based positions onto the cached list, dropping positions
// that do not exist. Input order is kept.
func (l ListedTasks) Resolve(indices []int) []domain.ListedTask {
	positions := l.Positions(indices)
	selected := make([]domain.ListedTask, 0, len(positions))
	for _, idx := range positions {
		selected = append(selected, l.Tasks[idx-1])
	}
	return selected
}

func copyPending(p PendingBatch) PendingBatch {
	out := PendingBatch{SourceRef: p.SourceRef}
	if len(p.Tasks) > 0 {
		out.Tasks = append([]domain.ProposedTask(nil), p.Tasks...)
	}
	if p.Meta != nil {
		meta := *p.Meta
		out.Meta = &meta
	}
	return out
}

func copyListed(l ListedTasks) ListedTasks {
	out := ListedTasks{PostedAt: l.PostedAt, MessageID: l.MessageID}
	if len(l.Tasks) > 0 {
		out.Tasks = append([]domain.ListedTask(nil), l.Tasks...)
	}
	return out
}
