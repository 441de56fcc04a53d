package pipeline

import (
	"io"
	"path"
	"strings"
	"sync"

	"github.com/jlaffaye/ftp"

	"logostage/internal/config"
)

func ftpCfg() config.FTP {
	return config.FTP{
		Host:           "ftp.test:21",
		StagingPath:    "/uploads",
		StagingBaseURL: "http://files.test/uploads",
		LibraryPath:    "/library",
		LibraryBaseURL: "http://files.test/library",
		ImageExts:      []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}
}

// fakeConn — минимальная имитация FTP-соединения для сквозного теста.
type fakeConn struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{files: make(map[string][]byte)}
}

func (c *fakeConn) List(dir string) ([]*ftp.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []*ftp.Entry
	for p, data := range c.files {
		if path.Dir(p) != dir {
			continue
		}
		entries = append(entries, &ftp.Entry{
			Name: path.Base(p),
			Type: ftp.EntryTypeFile,
			Size: uint64(len(data)),
		})
	}
	return entries, nil
}

func (c *fakeConn) Stor(p string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[p] = data
	return nil
}

func (c *fakeConn) Delete(p string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, p)
	return nil
}

func (c *fakeConn) RemoveDirRecur(p string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for f := range c.files {
		if strings.HasPrefix(f, p+"/") {
			delete(c.files, f)
		}
	}
	return nil
}

func (c *fakeConn) MakeDir(p string) error { return nil }
func (c *fakeConn) Quit() error            { return nil }

func (c *fakeConn) hasPrefix(prefix string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
