// gensrv — заглушка внешнего вебхука генерации для локальных прогонов.
// Отвечает четырьмя фиксированными ключами вариантов, каждый указывает на
// исходную картинку с пометкой варианта. Может имитировать отказы.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

// Конфигурация через окружение
var (
	addr      = envOr("GENSRV_ADDR", ":9090")
	delay     = envDurationOr("GENSRV_DELAY", 300*time.Millisecond) // имитация времени генерации
	failEvery = envIntOr("GENSRV_FAIL_EVERY", 0)                    // 0 = не отказывать, N = каждый N-й запрос 500
)

var requests atomic.Int64

func main() {
	http.HandleFunc("GET /webhook/final-variant", variantHandler)

	log.Println("gensrv started on", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func variantHandler(w http.ResponseWriter, r *http.Request) {
	imageURL := r.URL.Query().Get("imageUrl")
	if imageURL == "" {
		http.Error(w, "imageUrl is required", http.StatusBadRequest)
		return
	}

	n := requests.Add(1)
	if failEvery > 0 && n%int64(failEvery) == 0 {
		http.Error(w, "generation overloaded", http.StatusInternalServerError)
		return
	}

	time.Sleep(delay)

	resp := map[string]string{
		"original_black": variantURL(imageURL, "original_black"),
		"original_white": variantURL(imageURL, "original_white"),
		"bw_black":       variantURL(imageURL, "bw_black"),
		"bw_white":       variantURL(imageURL, "bw_white"),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func variantURL(imageURL, key string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return imageURL
	}
	q := u.Query()
	q.Set("variant", key)
	u.RawQuery = q.Encode()
	return u.String()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
