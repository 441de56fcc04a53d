package ftpstore

import (
	"context"
	"fmt"
	"io"

	"github.com/jlaffaye/ftp"

	"logostage/internal/config"
)

// Conn — минимальный срез операций FTP-соединения, который использует Store.
// Реализуется *ftp.ServerConn; в тестах подменяется фейком.
type Conn interface {
	List(path string) ([]*ftp.Entry, error)
	Stor(path string, r io.Reader) error
	Delete(path string) error
	RemoveDirRecur(path string) error
	MakeDir(path string) error
	Quit() error
}

type DialFunc func(ctx context.Context) (Conn, error)

// Dialer возвращает функцию, устанавливающую свежее авторизованное
// соединение. Пулинга нет: каждая операция хранилища открывает и закрывает
// свое соединение.
func Dialer(cfg config.FTP) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		c, err := ftp.Dial(cfg.Host,
			ftp.DialWithContext(ctx),
			ftp.DialWithTimeout(cfg.DialTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("ftp dial failed: %w", err)
		}
		if err := c.Login(cfg.User, cfg.Password); err != nil {
			_ = c.Quit()
			return nil, fmt.Errorf("ftp login failed: %w", err)
		}
		return c, nil
	}
}
