// Package batch — чистая классификация пользовательской партии: без I/O
// делит элементы на уже лежащие в хранилище и требующие загрузки.
package batch

import "logostage/internal/model"

// Split делит партию на транзитные активы (элемент уже имеет URL в
// хранилище) и локальные элементы для загрузки. Относительный порядок
// внутри каждого списка совпадает с порядком подачи. Входные данные не
// изменяются.
func Split(items []model.BatchItem) (passthrough []model.UploadedAsset, locals []model.LocalItem) {
	for _, it := range items {
		switch v := it.(type) {
		case model.RemoteItem:
			passthrough = append(passthrough, model.UploadedAsset{
				OriginalName: v.Name,
				Filename:     v.Name, // имя не меняется, файл не перезаливается
				URL:          v.URL,
				Size:         v.Size,
			})
		case model.LocalItem:
			locals = append(locals, v)
		}
	}
	return passthrough, locals
}

// Merge восстанавливает исходный порядок подачи из двух подсписков:
// transit — результат Split для транзитных элементов, uploaded — активы,
// полученные от загрузчика для локальных (в том же порядке).
func Merge(items []model.BatchItem, transit, uploaded []model.UploadedAsset) []model.UploadedAsset {
	merged := make([]model.UploadedAsset, 0, len(items))
	for _, it := range items {
		switch it.(type) {
		case model.RemoteItem:
			merged = append(merged, transit[0])
			transit = transit[1:]
		case model.LocalItem:
			merged = append(merged, uploaded[0])
			uploaded = uploaded[1:]
		}
	}
	return merged
}
