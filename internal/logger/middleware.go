package logger

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// HTTPLogging оборачивает обработчик: присваивает запросу ID, кладет
// request-scoped логгер в контекст, логирует статус и длительность,
// перехватывает паники.
func HTTPLogging(log *slog.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := log.With("reqID", uuid.NewString(), "from", r.RemoteAddr, "method", r.Method, "url", r.URL.String())
		log.Debug("request received")

		start := time.Now()

		// Подменяем ResponseWriter, чтобы увидеть статус ответа
		w = &statusInterceptor{
			ResponseWriter: w,
			log:            log,
		}

		ctx := Context(r.Context(), log)
		r = r.WithContext(ctx)

		defer func() {
			if p := recover(); p != nil {
				log.Error("*** panic recovered ***",
					"panic", p,
					"stack", debug.Stack())
				http.Error(w, "internal error", 500)
				return
			}
			log.Debug("request done", "duration", time.Since(start))
		}()

		h.ServeHTTP(w, r)
	})
}

// statusInterceptor логирует HTTP статусы и перехватывает ошибки записи
type statusInterceptor struct {
	http.ResponseWriter
	log    *slog.Logger
	status int // 0 = не установлен
}

func (si *statusInterceptor) WriteHeader(status int) {
	switch {
	case status >= 100 && status < 200:
		si.log.Debug("informational status", "status", status)
		si.ResponseWriter.WriteHeader(status)

	case si.status == 0:
		si.status = status
		si.log.Debug("response status", "status", status)
		si.ResponseWriter.WriteHeader(status)

	case si.status != status:
		si.log.Warn("status code conflict", "origStatus", si.status, "newStatus", status)

	default:
		si.log.Warn("redundant WriteHeader call", "status", status)
	}
}

func (si *statusInterceptor) Write(b []byte) (int, error) {
	// NOTE: ResponseWriter сам сделает WriteHeader(200) при необходимости
	n, err := si.ResponseWriter.Write(b)
	if err != nil {
		si.log.Error("write failed", "error", err)
	}
	return n, err
}
