// Package image 图书、出版社、客户的图片上传
package image

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/pkg/saga"
)

// Storage 文件存储（实现见 infrastructure/storage.Service）
type Storage interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
	NameFromURL(url string) string
}

// Target 可以设置图片的实体服务
// SetImage成功时发出UPDATE通知并返回旧地址
type Target interface {
	SetImage(ctx context.Context, rawID, url string) (previous string, err error)
}

// Upload 上传的文件
type Upload struct {
	Filename string
	Content  io.Reader
}

// Service 图片替换用例
// 流程：保存新文件 → 更新实体图片地址 → 删除旧文件
// 更新实体失败时删除刚保存的新文件；旧文件删除失败只记录日志
type Service struct {
	storage Storage
	log     logrus.FieldLogger
}

// NewService 创建图片服务
func NewService(storage Storage, log logrus.FieldLogger) *Service {
	return &Service{storage: storage, log: log.WithField("service", "image")}
}

// Replace 替换实体图片，返回新地址
func (s *Service) Replace(ctx context.Context, target Target, rawID string, upload Upload) (string, error) {
	var name, url, previous string

	err := saga.New("replace_image", 30*time.Second, s.log).
		AddStep("save_file",
			func(ctx context.Context) error {
				var err error
				name, err = s.storage.Save(ctx, upload.Filename, upload.Content)
				url = s.storage.URL(name)
				return err
			},
			func(ctx context.Context) error {
				return s.storage.Delete(ctx, name)
			}).
		AddStep("set_image",
			func(ctx context.Context) error {
				var err error
				previous, err = target.SetImage(ctx, rawID, url)
				return err
			}, nil).
		Execute(ctx)
	if err != nil {
		return "", err
	}

	if old := s.storage.NameFromURL(previous); old != "" && old != name {
		if err := s.storage.Delete(ctx, old); err != nil {
			s.log.WithError(err).WithField("file", old).Warn("删除旧图片失败")
		}
	}
	return url, nil
}
