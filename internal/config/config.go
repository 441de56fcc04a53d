package config

import (
	"log/slog"
	"time"
)

type Logger struct {
	Level     slog.Level
	Plaintext bool
}

type Server struct {
	Addr string
}

// FTP описывает подключение к удаленному хранилищу и два его логических
// каталога: эфемерный staging (очищается перед каждой партией) и
// постоянную библиотеку.
type FTP struct {
	Host           string
	User           string
	Password       string
	StagingPath    string
	StagingBaseURL string // публичный URL staging-каталога
	LibraryPath    string
	LibraryBaseURL string // публичный URL библиотеки
	DialTimeout    time.Duration
	ImageExts      []string // расширения, считающиеся изображениями при листинге библиотеки
}

type Upload struct {
	MaxFiles    int   // максимальное количество файлов в одной партии
	MaxMemoryMB int64 // лимит памяти на разбор multipart-формы
}

type Config struct {
	Logger Logger
	Server Server
	FTP    FTP
	Upload Upload
}

func Load() (Config, error) {
	var ge getenv
	cfg := Config{
		Logger: Logger{
			Level:     ge.LogLevel("LOG_LEVEL", false, slog.LevelInfo),
			Plaintext: ge.Bool("LOG_PLAINTEXT", false, false),
		},
		Server: Server{
			Addr: ge.String("SERVER_ADDR", false, ":8080"),
		},
		FTP: FTP{
			Host:           ge.String("FTP_HOST", true, ""),
			User:           ge.String("FTP_USER", true, ""),
			Password:       ge.String("FTP_PASS", true, ""),
			StagingPath:    ge.String("FTP_PATH", false, "/uploads"),
			StagingBaseURL: ge.String("FTP_BASE_URL", true, ""),
			LibraryPath:    ge.String("FTP_LIBRARY_PATH", false, "/library"),
			LibraryBaseURL: ge.String("FTP_LIBRARY_BASE_URL", true, ""),
			DialTimeout:    ge.Duration("FTP_DIAL_TIMEOUT", false, 10*time.Second),
			ImageExts: ge.Strings("LIBRARY_IMAGE_EXTS", false, []string{
				".jpg", ".jpeg", ".png", ".gif", ".webp",
			}),
		},
		Upload: Upload{
			MaxFiles:    ge.Int("UPLOAD_MAX_FILES", false, 20),
			MaxMemoryMB: int64(ge.Int("UPLOAD_MAX_MEMORY_MB", false, 32)),
		},
	}
	return cfg, ge.Err()
}
