package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"logostage/internal/model"
)

var testNow = time.UnixMilli(1700000000000)

func newTestDispatcher(srv *httptest.Server) *Dispatcher {
	d := New(srv.URL+"/webhook/final-variant", srv.Client())
	d.Now = func() time.Time { return testNow }
	return d
}

// Ответ только с частью ключей дает ровно столько версий, в фиксированном
// порядке, с фиксированным фоном и cache-buster в URL.
func TestGenerate_VariantSubset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		be.Equal(t, r.URL.Query().Get("imageUrl"), "http://files.test/uploads/logo-1.png")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bw_white":"http://cdn.test/bw_white.png","original_black":"http://cdn.test/orig.png"}`))
	}))
	defer srv.Close()

	d := newTestDispatcher(srv)
	out := d.Generate(context.Background(), model.UploadedAsset{
		Filename: "logo-1.png",
		URL:      "http://files.test/uploads/logo-1.png",
	})

	be.True(t, out.Success)
	be.Equal(t, out.Filename, "logo-1.png")
	be.Equal(t, len(out.Versions), 2)

	be.Equal(t, out.Versions[0], model.Variant{
		Key:        "original_black",
		Label:      "Original",
		Background: "#ffffff",
		URL:        "http://cdn.test/orig.png?t=1700000000000",
	})
	be.Equal(t, out.Versions[1], model.Variant{
		Key:        "bw_white",
		Label:      "B&W White",
		Background: "#000000",
		URL:        "http://cdn.test/bw_white.png?t=1700000000000",
	})
}

func TestGenerate_AllVariants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"original_black":"http://cdn.test/1.png",
			"original_white":"http://cdn.test/2.png",
			"bw_black":"http://cdn.test/3.png",
			"bw_white":"http://cdn.test/4.png"
		}`))
	}))
	defer srv.Close()

	d := newTestDispatcher(srv)
	out := d.Generate(context.Background(), model.UploadedAsset{Filename: "a.png", URL: "http://x/a.png"})

	be.True(t, out.Success)
	be.Equal(t, len(out.Versions), 4)
	for i, key := range model.VariantKeys {
		be.Equal(t, out.Versions[i].Key, key)
	}
}

// URL с уже имеющейся query-строкой получает '&t=', без нее — '?t='.
func TestCacheBust(t *testing.T) {
	be.Equal(t, cacheBust("http://x/a.png", 7), "http://x/a.png?t=7")
	be.Equal(t, cacheBust("http://x/a.png?v=1", 7), "http://x/a.png?v=1&t=7")
}

func TestGenerate_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newTestDispatcher(srv)
	out := d.Generate(context.Background(), model.UploadedAsset{Filename: "a.png", URL: "http://x/a.png"})

	be.True(t, !out.Success)
	be.True(t, strings.Contains(out.ErrorMsg, "500"))
	be.Equal(t, len(out.Versions), 0)
}

func TestGenerate_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	d := newTestDispatcher(srv)
	out := d.Generate(context.Background(), model.UploadedAsset{Filename: "a.png", URL: "http://x/a.png"})

	be.True(t, !out.Success)
	be.True(t, out.ErrorMsg != "")
}

// Отказ среднего элемента не ломает остальные: колбэк вызывается ровно три
// раза, в порядке подачи.
func TestDispatchAll_MiddleFailureIsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("imageUrl"), "two") {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"original_black":"http://cdn.test/ok.png"}`))
	}))
	defer srv.Close()

	assets := []model.UploadedAsset{
		{Filename: "one-1.png", URL: "http://x/one.png"},
		{Filename: "two-2.png", URL: "http://x/two.png"},
		{Filename: "three-3.png", URL: "http://x/three.png"},
	}

	d := newTestDispatcher(srv)

	var outcomes []model.Outcome
	d.DispatchAll(context.Background(), assets, func(out model.Outcome) {
		outcomes = append(outcomes, out)
	})

	be.Equal(t, len(outcomes), 3)
	be.Equal(t, outcomes[0].Filename, "one-1.png")
	be.Equal(t, outcomes[1].Filename, "two-2.png")
	be.Equal(t, outcomes[2].Filename, "three-3.png")

	be.True(t, outcomes[0].Success)
	be.True(t, !outcomes[1].Success)
	be.True(t, outcomes[2].Success)

	be.Equal(t, len(outcomes[0].Versions), 1)
	be.Equal(t, outcomes[0].Versions[0].URL, "http://cdn.test/ok.png?t=1700000000000")
}

// Запросы к вебхуку идут строго по одному.
func TestDispatchAll_Sequential(t *testing.T) {
	var active, maxActive int
	var mu = make(chan struct{}, 1)
	mu <- struct{}{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-mu
		active++
		if active > maxActive {
			maxActive = active
		}
		mu <- struct{}{}

		time.Sleep(10 * time.Millisecond)

		<-mu
		active--
		mu <- struct{}{}

		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	assets := []model.UploadedAsset{
		{Filename: "a.png", URL: "http://x/a.png"},
		{Filename: "b.png", URL: "http://x/b.png"},
		{Filename: "c.png", URL: "http://x/c.png"},
	}

	d := newTestDispatcher(srv)
	var count int
	d.DispatchAll(context.Background(), assets, func(model.Outcome) { count++ })

	be.Equal(t, count, 3)
	be.Equal(t, maxActive, 1)
}
