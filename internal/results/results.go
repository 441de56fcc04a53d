// Package results — упорядоченный реестр записей обработки в памяти.
// Пишут загрузчик (вставка) и диспетчер (обновление), читает презентация.
package results

import (
	"sync"
	"time"

	"logostage/internal/model"
)

type Store struct {
	mu      sync.RWMutex
	records []model.ProcessingRecord
}

func New() *Store {
	return &Store{}
}

// InsertPending добавляет pending-записи впереди существующих: свежая
// партия отображается первой.
func (s *Store) InsertPending(filenames []string) {
	now := time.Now()
	fresh := make([]model.ProcessingRecord, 0, len(filenames))
	for _, name := range filenames {
		fresh = append(fresh, model.ProcessingRecord{
			Filename:  name,
			Status:    model.StatusPending,
			CreatedAt: now,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(fresh, s.records...)
}

// UpdateByFilename переводит запись из pending в конечное состояние.
// Если записи нет (устаревшее обновление после сброса) — no-op.
func (s *Store) UpdateByFilename(filename string, out model.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].Filename != filename {
			continue
		}
		if out.Success {
			s.records[i].Status = model.StatusSucceeded
			s.records[i].Versions = out.Versions
			s.records[i].ErrorMsg = ""
		} else {
			s.records[i].Status = model.StatusFailed
			s.records[i].Versions = nil
			s.records[i].ErrorMsg = out.ErrorMsg
		}
		return
	}
}

// ResetAll удаляет все записи.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Snapshot возвращает глубокую копию текущего состояния.
func (s *Store) Snapshot() []model.ProcessingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make([]model.ProcessingRecord, 0, len(s.records))
	for _, r := range s.records {
		snap = append(snap, r.Clone())
	}
	return snap
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
