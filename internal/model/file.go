package model

import "time"

// RemoteFile представляет объект в библиотечном каталоге хранилища.
type RemoteFile struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt,omitzero"`
}

// UploadedAsset — результат загрузки одного элемента партии (или его
// транзитный эквивалент, если элемент уже был в хранилище).
//
// Filename назначается сервером и устойчив к коллизиям за счет временного
// суффикса; для транзитных элементов совпадает с исходным именем.
type UploadedAsset struct {
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
}

const (
	DeleteStatusDeleted = "deleted"
	DeleteStatusError   = "error"
)

// DeleteResult — исход удаления одного элемента библиотеки.
type DeleteResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	ErrorMsg string `json:"error,omitempty"`
}
