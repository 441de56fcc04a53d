package model

import (
	"slices"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ProcessingRecord — строка состояния генерации, ключ — Filename.
//
// Создается в состоянии pending, ровно один раз переходит в succeeded или
// failed. Удаляется только полным сбросом хранилища результатов.
type ProcessingRecord struct {
	Filename  string    `json:"filename"`
	Status    Status    `json:"status"`
	Versions  []Variant `json:"versions,omitempty"`
	ErrorMsg  string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (r ProcessingRecord) Clone() ProcessingRecord {
	r.Versions = slices.Clone(r.Versions)
	return r
}

// Outcome — итог одного запроса генерации, эмитится диспетчером по мере
// завершения каждого элемента.
type Outcome struct {
	Filename string    `json:"filename"`
	Success  bool      `json:"success"`
	Versions []Variant `json:"versions,omitempty"`
	ErrorMsg string    `json:"error,omitempty"`
}
