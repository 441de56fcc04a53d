// Package dispatch выдает запросы генерации внешнему вебхуку по одному на
// актив и эмитит частичные результаты по мере завершения.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"logostage/internal/model"
)

// workers — ширина очереди запросов к вебхуку. Внешний сервис падает под
// параллельной нагрузкой, поэтому ровно один воркер; константа — явная
// точка изменения политики.
const workers = 1

type Dispatcher struct {
	WebhookURL string
	Client     *http.Client

	// Now подменяется в тестах; nil означает time.Now.
	Now func() time.Time
}

func New(webhookURL string, client *http.Client) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{WebhookURL: webhookURL, Client: client}
}

// DispatchAll прогоняет активы через ограниченную очередь. На каждый актив
// onResult вызывается ровно один раз, сразу по завершении его запроса.
// Неудача одного элемента фиксируется в его Outcome и не останавливает
// остальные.
func (d *Dispatcher) DispatchAll(ctx context.Context, assets []model.UploadedAsset, onResult func(model.Outcome)) {
	jobs := make(chan model.UploadedAsset)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for asset := range jobs {
				out := d.Generate(ctx, asset)
				if onResult != nil {
					onResult(out)
				}
			}
		}()
	}

	for _, asset := range assets {
		jobs <- asset
	}
	close(jobs)
	wg.Wait()
}

// Generate выполняет один запрос генерации и собирает варианты в
// фиксированном порядке ключей. Отсутствующий в ответе ключ пропускается,
// это не ошибка.
func (d *Dispatcher) Generate(ctx context.Context, asset model.UploadedAsset) model.Outcome {
	log := slog.With("op", "Generate", "filename", asset.Filename)
	out := model.Outcome{Filename: asset.Filename}

	u, err := url.Parse(d.WebhookURL)
	if err != nil {
		out.ErrorMsg = fmt.Sprintf("invalid webhook url: %v", err)
		log.Error("invalid webhook url", "error", err)
		return out
	}
	q := u.Query()
	q.Set("imageUrl", asset.URL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		out.ErrorMsg = fmt.Sprintf("create request failed: %v", err)
		log.Error("create request failed", "error", err)
		return out
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		out.ErrorMsg = fmt.Sprintf("request failed: %v", err)
		log.Debug("request failed", "error", err)
		return out
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out.ErrorMsg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		log.Debug("unexpected status", "status", resp.StatusCode)
		return out
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		out.ErrorMsg = fmt.Sprintf("can't parse response: %v", err)
		log.Debug("can't parse response", "error", err)
		return out
	}

	ts := d.now().UnixMilli()
	for _, key := range model.VariantKeys {
		vurl, _ := raw[key].(string)
		if vurl == "" {
			continue
		}
		out.Versions = append(out.Versions, model.Variant{
			Key:        key,
			Label:      model.VariantLabel(key),
			Background: model.VariantBackground(key),
			URL:        cacheBust(vurl, ts),
		})
	}

	out.Success = true
	log.Debug("success", "versions", len(out.Versions))
	return out
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// cacheBust добавляет к URL параметр с текущим временем, чтобы повторные
// запросы одного и того же логического изображения не попадали в кэш.
func cacheBust(raw string, ts int64) string {
	sep := "?"
	if strings.ContainsRune(raw, '?') {
		sep = "&"
	}
	return raw + sep + "t=" + strconv.FormatInt(ts, 10)
}
