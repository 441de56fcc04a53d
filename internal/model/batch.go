package model

// BatchItem представляет один элемент пользовательской партии до загрузки.
//
// Ровно одно представление на элемент: LocalItem несет сырые байты и должен
// быть загружен в хранилище, RemoteItem уже лежит в хранилище и в загрузчик
// никогда не попадает.
type BatchItem interface {
	DisplayName() string
	batchItem()
}

type LocalItem struct {
	Name string
	Data []byte
}

func (i LocalItem) DisplayName() string { return i.Name }
func (LocalItem) batchItem()            {}

type RemoteItem struct {
	Name string
	URL  string
	Size int64
}

func (i RemoteItem) DisplayName() string { return i.Name }
func (RemoteItem) batchItem()            {}
