// Package pipeline координирует обработку одной партии: классификация,
// загрузка локальных элементов, регистрация pending-записей, диспетчеризация
// генерации и сведение событий завершения в хранилище результатов.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"logostage/internal/batch"
	"logostage/internal/model"
	"logostage/internal/results"
)

type Uploader interface {
	Upload(ctx context.Context, files []model.LocalItem, onProgress func(int)) ([]model.UploadedAsset, error)
}

type Dispatcher interface {
	DispatchAll(ctx context.Context, assets []model.UploadedAsset, onResult func(model.Outcome))
}

type Pipeline struct {
	store      *results.Store
	uploader   Uploader
	dispatcher Dispatcher
	inFlight   atomic.Bool
}

func New(store *results.Store, up Uploader, disp Dispatcher) *Pipeline {
	return &Pipeline{store: store, uploader: up, dispatcher: disp}
}

func (p *Pipeline) Store() *results.Store {
	return p.store
}

// InFlight сообщает, обрабатывается ли сейчас партия.
func (p *Pipeline) InFlight() bool {
	return p.inFlight.Load()
}

// Run прогоняет одну партию целиком. Пока партия в работе, повторный вызов
// возвращает ErrBatchInFlight: staging один на всех, перекрывающиеся партии
// затирают друг друга. Неудача загрузки прерывает партию до создания
// каких-либо записей; неудачи генерации изолированы в своих записях.
//
// onProgress получает прогресс загрузки в [0,100]; onResult вызывается на
// каждый исход после применения его к хранилищу. Оба могут быть nil.
func (p *Pipeline) Run(ctx context.Context, items []model.BatchItem, onProgress func(int), onResult func(model.Outcome)) error {
	if len(items) == 0 {
		return model.ErrNoFiles
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return model.ErrBatchInFlight
	}
	defer p.inFlight.Store(false)

	log := slog.With("op", "pipeline.Run", "batchID", uuid.NewString(), "items", len(items))

	transit, locals := batch.Split(items)
	log.Debug("batch split", "transit", len(transit), "locals", len(locals))

	var uploaded []model.UploadedAsset
	if len(locals) > 0 {
		var err error
		uploaded, err = p.uploader.Upload(ctx, locals, onProgress)
		if err != nil {
			return fmt.Errorf("batch upload failed: %w", err)
		}
	}

	assets := batch.Merge(items, transit, uploaded)

	filenames := make([]string, len(assets))
	for i, a := range assets {
		filenames[i] = a.Filename
	}
	p.store.InsertPending(filenames)

	// События завершения сводятся в хранилище одной горутиной-редьюсером:
	// диспетчер ничего не знает про хранилище и презентацию.
	events := make(chan model.Outcome)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for out := range events {
			p.store.UpdateByFilename(out.Filename, out)
			if onResult != nil {
				onResult(out)
			}
		}
	}()

	p.dispatcher.DispatchAll(ctx, assets, func(out model.Outcome) {
		events <- out
	})
	close(events)
	<-done

	log.Debug("batch complete")
	return nil
}
