// Package api определяет HTTP-поверхность шлюза хранилища: загрузку партии,
// очистку staging, листинг и удаление библиотеки, health-пробу и
// проксирование картинок для обхода браузерных ограничений origin.
package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"logostage/internal/model"
)

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Store — операции удаленного хранилища, которые обслуживает API.
type Store interface {
	Upload(ctx context.Context, files []model.LocalItem) ([]model.UploadedAsset, error)
	ClearStaging(ctx context.Context) error
	ListLibrary(ctx context.Context) ([]model.RemoteFile, error)
	DeleteLibraryItems(ctx context.Context, names []string) []model.DeleteResult
}

type Config struct {
	MaxFiles    int    // лимит файлов на одну партию
	MaxMemoryMB int64  // лимит памяти multipart-формы
	FTPHost     string // отдается health-пробой
}

func New(store Store, proxyClient *http.Client, cfg Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", UploadFiles(store, cfg))
	mux.HandleFunc("DELETE /api/clear", ClearStaging(store))
	mux.HandleFunc("GET /api/health", Health(cfg.FTPHost))
	mux.HandleFunc("GET /api/proxy-image", ProxyImage(proxyClient))
	mux.HandleFunc("GET /api/saved-logos", ListSavedLogos(store))
	mux.HandleFunc("DELETE /api/saved-logos", DeleteSavedLogos(store))
	return mux
}

type uploadResponse struct {
	Success bool                  `json:"success"`
	Files   []model.UploadedAsset `json:"files"`
}

func UploadFiles(store Store, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "UploadFiles")

		if err := r.ParseMultipartForm(cfg.MaxMemoryMB << 20); err != nil {
			h.WriteError(&httpError{http.StatusBadRequest, "can't parse multipart form"})
			return
		}

		var headers []*multipart.FileHeader
		if r.MultipartForm != nil {
			headers = r.MultipartForm.File["images"]
		}

		if len(headers) == 0 {
			h.WriteError(model.ErrNoFiles)
			return
		}
		if len(headers) > cfg.MaxFiles {
			h.WriteError(model.ErrTooManyFiles)
			return
		}

		files := make([]model.LocalItem, 0, len(headers))
		for _, fh := range headers {
			data, err := readFormFile(fh)
			if err != nil {
				h.Logger().Error("read form file failed", "name", fh.Filename, "error", err)
				h.WriteError(&httpError{http.StatusBadRequest, "can't read uploaded file"})
				return
			}
			files = append(files, model.LocalItem{Name: fh.Filename, Data: data})
		}

		assets, err := store.Upload(h.Ctx(), files)
		if err != nil {
			h.WriteError(err)
			return
		}

		h.WriteResponse(uploadResponse{Success: true, Files: assets}, http.StatusOK)
	}
}

type clearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ClearStaging(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "ClearStaging")

		if err := store.ClearStaging(h.Ctx()); err != nil {
			h.WriteError(err)
			return
		}

		h.WriteResponse(clearResponse{Success: true, Message: "staging cleared"}, http.StatusOK)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	FTPHost string `json:"ftp_host"`
}

func Health(ftpHost string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "Health")
		h.WriteResponse(healthResponse{Status: "ok", FTPHost: ftpHost}, http.StatusOK)
	}
}

// ProxyImage отдает байты внешней картинки с того же origin, что и шлюз.
// Ответы с типом, отличным от image/*, отклоняются до пересылки тела.
func ProxyImage(client *http.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "ProxyImage")

		rawURL := r.URL.Query().Get("url")
		if rawURL == "" {
			h.WriteError(model.ErrMissingURL)
			return
		}

		req, err := http.NewRequestWithContext(h.Ctx(), http.MethodGet, rawURL, nil)
		if err != nil {
			h.WriteError(&httpError{http.StatusBadRequest, "invalid url"})
			return
		}

		resp, err := client.Do(req)
		if err != nil {
			h.Logger().Warn("fetch failed", "url", rawURL, "error", err)
			h.WriteError(&httpError{http.StatusBadGateway, "can't fetch image"})
			return
		}
		defer resp.Body.Close()

		contentType := resp.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			h.WriteError(model.ErrNotImage)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, resp.Body); err != nil {
			h.Logger().Error("stream body failed", "error", err)
		}
	}
}

type listSavedResponse struct {
	Success bool               `json:"success"`
	Files   []model.RemoteFile `json:"files"`
}

func ListSavedLogos(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "ListSavedLogos")

		files, err := store.ListLibrary(h.Ctx())
		if err != nil {
			h.WriteError(err)
			return
		}
		if files == nil {
			files = []model.RemoteFile{}
		}

		h.WriteResponse(listSavedResponse{Success: true, Files: files}, http.StatusOK)
	}
}

type deleteSavedRequest struct {
	Filenames []string `json:"filenames"`
}

type deleteSavedResponse struct {
	Success bool                 `json:"success"`
	Results []model.DeleteResult `json:"results"`
}

func DeleteSavedLogos(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "DeleteSavedLogos")

		var req deleteSavedRequest
		if err := h.ReadRequest(&req); err != nil {
			h.WriteError(err)
			return
		}

		if len(req.Filenames) == 0 {
			h.WriteError(&httpError{http.StatusBadRequest, "filenames is required"})
			return
		}

		results := store.DeleteLibraryItems(h.Ctx(), req.Filenames)
		h.WriteResponse(deleteSavedResponse{Success: true, Results: results}, http.StatusOK)
	}
}
