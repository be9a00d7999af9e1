package uploader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fishgalaxy/backend/internal/domain"
)

// LocalUploader кладёт файлы в каталог на диске и отдаёт публичные URL вида
// baseURL/key. Каталог должен раздаваться внешним статическим сервером.
type LocalUploader struct {
	root    string
	baseURL string
}

// NewLocalUploader конструирует файловый uploader.
func NewLocalUploader(root, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &LocalUploader{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload сохраняет файл под ключом key. Ключ не должен выходить за пределы
// корневого каталога.
func (u *LocalUploader) Upload(key string, data []byte, _ string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid upload key: %q", key)
	}

	path := filepath.Join(u.root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return u.baseURL + "/" + filepath.ToSlash(clean), nil
}

var _ domain.Uploader = (*LocalUploader)(nil)
