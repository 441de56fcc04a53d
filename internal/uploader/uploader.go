// Package uploader отправляет локальные элементы партии шлюзу одним
// multipart-запросом и сообщает прогресс передачи.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"logostage/internal/model"
)

// transferCap — потолок прогресса во время передачи тела. 100 сообщается
// только после полного ответа сервера: до этого серверная часть (очистка
// staging и заливка файлов) еще не завершена.
const transferCap = 95

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, HTTPClient: client}
}

type uploadResponse struct {
	Success bool                  `json:"success"`
	Files   []model.UploadedAsset `json:"files"`
	Error   string                `json:"error"`
}

// Upload отправляет все файлы одним запросом POST /api/upload. onProgress
// получает монотонно неубывающие значения в [0,100]; во время передачи не
// выше transferCap. Ошибка возвращается при сбое транспорта, неуспешном
// статусе или success:false в ответе.
func (c *Client) Upload(ctx context.Context, files []model.LocalItem, onProgress func(int)) ([]model.UploadedAsset, error) {
	if len(files) == 0 {
		return nil, nil
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		fw, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file failed: %w", err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write form file failed: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer failed: %w", err)
	}

	total := int64(body.Len())
	pr := &progressReader{r: body, total: total, report: onProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = total

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("can't parse upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !ur.Success {
		msg := ur.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("upload failed: %s", msg)
	}

	if onProgress != nil {
		onProgress(100)
	}

	return ur.Files, nil
}

// progressReader считает переданные байты и репортит процент, масштабируя
// его к transferCap. Повторные значения подавляются, так что репорты
// строго возрастают.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.sent += int64(n)

	if p.report != nil && p.total > 0 {
		pct := int(p.sent * transferCap / p.total)
		if pct > transferCap {
			pct = transferCap
		}
		if pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}

	return n, err
}
