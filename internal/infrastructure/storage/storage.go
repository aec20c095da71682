// Package storage 图片文件存储
// 文件保存在afero文件系统中（生产为OsFs的BasePathFs，测试为MemMapFs），
// 对外只暴露文件名与公开URL。
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// DefaultMaxSize 未配置时的单文件上限（5MB）
const DefaultMaxSize = 5 << 20

// Service 文件存储
type Service struct {
	fs          afero.Fs
	baseURL     string
	allowedExts map[string]struct{}
	maxSize     int64
	log         logrus.FieldLogger
}

// NewLocal 以cfg.Storage.Dir为根目录创建本地存储
func NewLocal(cfg *config.Config, log logrus.FieldLogger) (*Service, error) {
	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	fs := afero.NewBasePathFs(afero.NewOsFs(), cfg.Storage.Dir)
	return New(fs, cfg.Storage, log), nil
}

// New 在给定文件系统上创建存储
func New(fs afero.Fs, cfg config.StorageConfig, log logrus.FieldLogger) *Service {
	exts := make(map[string]struct{}, len(cfg.AllowedExts))
	for _, ext := range cfg.AllowedExts {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			exts[ext] = struct{}{}
		}
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{
		fs:          fs,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		allowedExts: exts,
		maxSize:     maxSize,
		log:         log,
	}
}

// Save 保存上传文件，返回生成的文件名（uuid + 原扩展名）
// 校验：扩展名白名单、文件大小上限
func (s *Service) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	// 1. 校验扩展名
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if _, ok := s.allowedExts[ext]; !ok {
		return "", apperrors.ErrInvalidFile.WithMessage("不支持的文件类型: %q", ext)
	}

	// 2. 写入文件，多读一个字节用于判断是否超限
	name := uuid.NewString() + "." + ext
	f, err := s.fs.Create(name)
	if err != nil {
		return "", apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "创建文件失败")
	}
	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(name)
		return "", apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "写入文件失败")
	}
	if n > s.maxSize {
		_ = s.fs.Remove(name)
		return "", apperrors.ErrInvalidFile.WithMessage("文件超过大小上限(%d字节)", s.maxSize)
	}
	if n == 0 {
		_ = s.fs.Remove(name)
		return "", apperrors.ErrInvalidFile.WithMessage("文件为空")
	}

	s.log.WithFields(logrus.Fields{"file": name, "size": n}).Debug("文件已保存")
	return name, nil
}

// Delete 删除文件，文件不存在视为成功
func (s *Service) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return nil
	}
	if err := s.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "删除文件失败")
	}
	return nil
}

// Open 打开文件供下载
func (s *Service) Open(name string) (afero.File, os.FileInfo, error) {
	if !validName(name) {
		return nil, nil, apperrors.ErrNotFound
	}
	f, err := s.fs.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "打开文件失败")
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, nil, apperrors.ErrNotFound
	}
	return f, info, nil
}

// URL 文件的公开访问地址
func (s *Service) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + "/" + name
}

// NameFromURL 从公开地址还原文件名，非本存储的地址返回空串
func (s *Service) NameFromURL(url string) string {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	name := strings.TrimPrefix(url, prefix)
	if !validName(name) {
		return ""
	}
	return name
}

// validName 只接受单层文件名，拒绝路径穿越
func validName(name string) bool {
	return name != "" && name == path.Base(name) && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
