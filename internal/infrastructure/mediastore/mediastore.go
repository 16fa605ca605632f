// Package mediastore 将上传的视频文件落盘到本地目录。
package mediastore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/google/wire"
)

// ProviderSet 暴露媒体存储的依赖注入入口。
var ProviderSet = wire.NewSet(NewLocalStore)

// Config 描述媒体文件的落盘目录。
type Config struct {
	Dir string
}

// LocalStore 把媒体文件保存在单一本地目录下，文件名带随机后缀防冲突。
type LocalStore struct {
	dir string
	log *log.Helper
}

// NewLocalStore 创建 LocalStore 并确保目录存在。
func NewLocalStore(cfg Config, logger log.Logger) (*LocalStore, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "media"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve media dir %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %q: %w", abs, err)
	}
	return &LocalStore{
		dir: abs,
		log: log.NewHelper(log.With(logger, "component", "mediastore")),
	}, nil
}

// Save 将内容写入目录下的新文件，返回存储路径。
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := s.uniqueName(filename)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return "", fmt.Errorf("write media file: %w", copyErr)
		}
		return "", fmt.Errorf("close media file: %w", closeErr)
	}

	s.log.WithContext(ctx).Debugf("media saved: path=%s bytes=%d", path, written)
	return path, nil
}

// Remove 删除存储路径对应的文件；路径不在目录内时拒绝。
func (s *LocalStore) Remove(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve media path %q: %w", path, err)
	}
	if !strings.HasPrefix(abs, s.dir+string(filepath.Separator)) {
		return fmt.Errorf("media path %q outside store dir", path)
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			s.log.WithContext(ctx).Warnf("media already gone: path=%s", abs)
			return nil
		}
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// uniqueName 清洗原始文件名并追加随机前缀，避免同名覆盖与路径穿越。
func (s *LocalStore) uniqueName(filename string) string {
	base := filepath.Base(filename)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	return uuid.NewString() + "_" + base
}
