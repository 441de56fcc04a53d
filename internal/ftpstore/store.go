// Package ftpstore реализует шлюз к удаленному FTP-хранилищу: загрузку
// партии в staging с резервной копией в библиотеку, очистку staging,
// листинг и удаление элементов библиотеки.
//
// Staging-каталог — глобальное изменяемое состояние без блокировок:
// очистка из параллельной сессии может пересечься с чужой загрузкой.
// Это принятое ограничение однопользовательского сценария.
package ftpstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"logostage/internal/config"
	"logostage/internal/model"
)

type Store struct {
	cfg  config.FTP
	dial DialFunc
	exts []string // нормализованные к нижнему регистру расширения изображений
}

// New создает Store. Если dial == nil, используется Dialer(cfg).
func New(cfg config.FTP, dial DialFunc) *Store {
	if dial == nil {
		dial = Dialer(cfg)
	}
	exts := make([]string, 0, len(cfg.ImageExts))
	for _, ext := range cfg.ImageExts {
		exts = append(exts, strings.ToLower(ext))
	}
	return &Store{cfg: cfg, dial: dial, exts: exts}
}

// Upload очищает staging и заливает файлы по одному, сохраняя порядок.
// Для каждого файла дополнительно пишется копия в библиотеку; неудача копии
// логируется и не прерывает загрузку. Ошибка возвращается только если не
// удалось соединиться или записать в staging.
func (s *Store) Upload(ctx context.Context, files []model.LocalItem) ([]model.UploadedAsset, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	log := slog.With("op", "Upload", "files", len(files))

	// Неудачная очистка не фатальна: новые имена все равно уникальны.
	s.clearDir(conn, s.cfg.StagingPath)

	assets := make([]model.UploadedAsset, 0, len(files))
	for _, f := range files {
		name := canonicalName(f.Name, time.Now().UnixMilli())

		if err := conn.Stor(path.Join(s.cfg.StagingPath, name), bytes.NewReader(f.Data)); err != nil {
			return nil, fmt.Errorf("stor %q failed: %w", name, err)
		}

		if err := conn.Stor(path.Join(s.cfg.LibraryPath, name), bytes.NewReader(f.Data)); err != nil {
			log.Warn("library copy failed", "name", name, "error", err)
		}

		assets = append(assets, model.UploadedAsset{
			OriginalName: f.Name,
			Filename:     name,
			URL:          s.cfg.StagingBaseURL + "/" + name,
			Size:         int64(len(f.Data)),
		})
		log.Debug("uploaded", "name", name)
	}

	return assets, nil
}

// ClearStaging рекурсивно очищает staging-каталог. Идемпотентна; ошибки
// отдельных удалений логируются и наружу не выходят — это вспомогательная
// уборка, а не транзакция. Ошибка возвращается только при недоступности
// самого хранилища.
func (s *Store) ClearStaging(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit()

	s.clearDir(conn, s.cfg.StagingPath)
	return nil
}

// clearDir удаляет все содержимое каталога: файлы и подкаталоги рекурсивно.
// Любые ошибки логируются, выполнение продолжается.
func (s *Store) clearDir(conn Conn, dir string) {
	log := slog.With("op", "clearDir", "dir", dir)

	// Каталог может еще не существовать; тогда и чистить нечего.
	if err := conn.MakeDir(dir); err != nil {
		log.Debug("make dir", "error", err)
	}

	entries, err := conn.List(dir)
	if err != nil {
		log.Warn("list failed", "error", err)
		return
	}

	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		p := path.Join(dir, e.Name)

		var err error
		if e.Type == ftp.EntryTypeFolder {
			err = conn.RemoveDirRecur(p)
		} else {
			err = conn.Delete(p)
		}
		if err != nil {
			log.Warn("delete failed", "entry", e.Name, "error", err)
			continue
		}
		log.Debug("deleted", "entry", e.Name)
	}
}

// ListLibrary возвращает изображения библиотечного каталога, самые свежие
// первыми.
func (s *Store) ListLibrary(ctx context.Context) ([]model.RemoteFile, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	entries, err := conn.List(s.cfg.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("list %q failed: %w", s.cfg.LibraryPath, err)
	}

	files := make([]model.RemoteFile, 0, len(entries))
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile || !s.isImage(e.Name) {
			continue
		}
		files = append(files, model.RemoteFile{
			Name:       e.Name,
			URL:        s.cfg.LibraryBaseURL + "/" + e.Name,
			Size:       int64(e.Size),
			ModifiedAt: e.Time,
		})
	}

	slices.SortFunc(files, func(a, b model.RemoteFile) int {
		return b.ModifiedAt.Compare(a.ModifiedAt)
	})

	return files, nil
}

// DeleteLibraryItems удаляет элементы библиотеки независимо друг от друга и
// возвращает исход по каждому имени. Имена предварительно очищаются от
// компонентов пути.
func (s *Store) DeleteLibraryItems(ctx context.Context, names []string) []model.DeleteResult {
	results := make([]model.DeleteResult, 0, len(names))

	conn, err := s.dial(ctx)
	if err != nil {
		for _, raw := range names {
			results = append(results, model.DeleteResult{
				Name:     path.Base(raw),
				Status:   model.DeleteStatusError,
				ErrorMsg: err.Error(),
			})
		}
		return results
	}
	defer conn.Quit()

	log := slog.With("op", "DeleteLibraryItems")

	for _, raw := range names {
		name := path.Base(raw) // защита от path traversal
		if name == "." || name == "/" || name == "" {
			results = append(results, model.DeleteResult{
				Name:     raw,
				Status:   model.DeleteStatusError,
				ErrorMsg: "invalid name",
			})
			continue
		}

		if err := conn.Delete(path.Join(s.cfg.LibraryPath, name)); err != nil {
			log.Warn("delete failed", "name", name, "error", err)
			results = append(results, model.DeleteResult{
				Name:     name,
				Status:   model.DeleteStatusError,
				ErrorMsg: err.Error(),
			})
			continue
		}

		log.Debug("deleted", "name", name)
		results = append(results, model.DeleteResult{
			Name:   name,
			Status: model.DeleteStatusDeleted,
		})
	}

	return results
}

func (s *Store) isImage(name string) bool {
	return slices.Contains(s.exts, strings.ToLower(path.Ext(name)))
}

// canonicalName строит устойчивое к коллизиям имя: base-<unixMilli><ext>.
// Два файла с одинаковым именем в пределах одной миллисекунды все же
// коллидируют — редкий принятый риск.
func canonicalName(origName string, ms int64) string {
	ext := path.Ext(origName)
	base := strings.TrimSuffix(path.Base(origName), ext)
	return base + "-" + strconv.FormatInt(ms, 10) + ext
}
