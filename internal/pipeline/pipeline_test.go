package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"logostage/internal/api"
	"logostage/internal/dispatch"
	"logostage/internal/ftpstore"
	"logostage/internal/model"
	"logostage/internal/results"
	"logostage/internal/uploader"
)

type fakeUploader struct {
	assets []model.UploadedAsset
	err    error
}

func (u *fakeUploader) Upload(ctx context.Context, files []model.LocalItem, onProgress func(int)) ([]model.UploadedAsset, error) {
	return u.assets, u.err
}

type fakeDispatcher struct {
	block   chan struct{} // если не nil, DispatchAll ждет сигнала
	outcome func(model.UploadedAsset) model.Outcome
}

func (d *fakeDispatcher) DispatchAll(ctx context.Context, assets []model.UploadedAsset, onResult func(model.Outcome)) {
	if d.block != nil {
		<-d.block
	}
	for _, a := range assets {
		out := model.Outcome{Filename: a.Filename, Success: true}
		if d.outcome != nil {
			out = d.outcome(a)
		}
		onResult(out)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	p := New(results.New(), &fakeUploader{}, &fakeDispatcher{})
	err := p.Run(context.Background(), nil, nil, nil)
	be.Err(t, err, model.ErrNoFiles)
}

// Неудача загрузки прерывает партию до создания каких-либо записей.
func TestRun_UploadFailureAbortsBeforeRecords(t *testing.T) {
	store := results.New()
	p := New(store, &fakeUploader{err: errors.New("ftp dial failed")}, &fakeDispatcher{})

	err := p.Run(context.Background(), []model.BatchItem{
		model.LocalItem{Name: "a.png", Data: []byte("x")},
	}, nil, nil)

	be.Err(t, err)
	be.Equal(t, store.Len(), 0)
}

// Пока партия в работе, повторный запуск отклоняется.
func TestRun_GateRejectsOverlappingBatch(t *testing.T) {
	store := results.New()
	disp := &fakeDispatcher{block: make(chan struct{})}
	p := New(store, &fakeUploader{assets: []model.UploadedAsset{{Filename: "a-1.png"}}}, disp)

	items := []model.BatchItem{model.LocalItem{Name: "a.png", Data: []byte("x")}}

	firstDone := make(chan error)
	go func() {
		firstDone <- p.Run(context.Background(), items, nil, nil)
	}()

	// дождаться, пока первая партия займет гейт
	for !p.InFlight() {
		time.Sleep(time.Millisecond)
	}

	err := p.Run(context.Background(), items, nil, nil)
	be.Err(t, err, model.ErrBatchInFlight)

	close(disp.block)
	be.Err(t, <-firstDone, nil)

	// после завершения гейт свободен
	be.True(t, !p.InFlight())
	err = p.Run(context.Background(), items, nil, nil)
	be.Err(t, err, nil)
}

// Сквозной прогон: реальный загрузчик против реального API с фейковым FTP,
// реальный диспетчер против заглушки вебхука.
func TestRun_EndToEnd(t *testing.T) {
	// шлюз хранилища на фейковом FTP-соединении
	fc := newFakeConn()
	fstore := ftpstore.New(ftpCfg(), func(ctx context.Context) (ftpstore.Conn, error) {
		return fc, nil
	})
	gateway := httptest.NewServer(api.New(fstore, nil, api.Config{
		MaxFiles:    20,
		MaxMemoryMB: 8,
		FTPHost:     "ftp.test",
	}))
	defer gateway.Close()

	// заглушка вебхука: полный набор вариантов, отказ для "bad"
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("imageUrl"), "bad") {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{
			"original_black":"http://cdn.test/1.png",
			"original_white":"http://cdn.test/2.png",
			"bw_black":"http://cdn.test/3.png",
			"bw_white":"http://cdn.test/4.png"
		}`))
	}))
	defer webhook.Close()

	store := results.New()
	p := New(store,
		uploader.New(gateway.URL, gateway.Client()),
		dispatch.New(webhook.URL+"/webhook/final-variant", webhook.Client()),
	)

	items := []model.BatchItem{
		model.LocalItem{Name: "fresh.png", Data: []byte("fresh-bytes")},
		model.RemoteItem{Name: "saved.png", URL: "http://files.test/library/saved.png"},
		model.LocalItem{Name: "bad.png", Data: []byte("bad-bytes")},
	}

	var progress []int
	var outcomes []model.Outcome
	err := p.Run(context.Background(), items,
		func(pct int) { progress = append(progress, pct) },
		func(out model.Outcome) { outcomes = append(outcomes, out) },
	)
	be.Err(t, err, nil)

	// прогресс дошел до 100 и не убывал
	be.True(t, len(progress) > 0)
	be.Equal(t, progress[len(progress)-1], 100)
	for i := 1; i < len(progress); i++ {
		be.True(t, progress[i] >= progress[i-1])
	}

	// по одному исходу на элемент, в порядке подачи
	be.Equal(t, len(outcomes), 3)
	be.True(t, strings.HasPrefix(outcomes[0].Filename, "fresh-"))
	be.Equal(t, outcomes[1].Filename, "saved.png")
	be.True(t, strings.HasPrefix(outcomes[2].Filename, "bad-"))

	// записи в порядке подачи, конечные состояния применены
	snap := store.Snapshot()
	be.Equal(t, len(snap), 3)

	be.Equal(t, snap[0].Status, model.StatusSucceeded)
	be.Equal(t, len(snap[0].Versions), 4)
	be.True(t, strings.Contains(snap[0].Versions[0].URL, "t="))

	be.Equal(t, snap[1].Status, model.StatusSucceeded)

	be.Equal(t, snap[2].Status, model.StatusFailed)
	be.True(t, snap[2].ErrorMsg != "")
	be.Equal(t, len(snap[2].Versions), 0)

	// локальные файлы дошли до staging и библиотеки, транзитный — нет
	be.True(t, fc.hasPrefix("/uploads/fresh-"))
	be.True(t, fc.hasPrefix("/library/fresh-"))
	be.True(t, !fc.hasPrefix("/uploads/saved"))
}
