package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/metrics"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/repository"
	"github.com/Ly-yang/wechat-editor/internal/storage"
)

const MaxMaterialNameLength = 255

// FileStore persists uploaded bytes. storage.Disk implements it.
type FileStore interface {
	Save(ctx context.Context, ext string, data []byte) (string, error)
	Remove(publicPath string) error
}

// MaterialService validates uploads and records the owner's assets.
type MaterialService struct {
	repo     repository.MaterialRepository
	store    FileStore
	maxBytes int64
	logger   *slog.Logger
}

func NewMaterialService(repo repository.MaterialRepository, store FileStore, maxBytes int64, logger *slog.Logger) *MaterialService {
	return &MaterialService{repo: repo, store: store, maxBytes: maxBytes, logger: logger}
}

// UploadInput is one uploaded file as received by the handler.
type UploadInput struct {
	Filename     string
	DeclaredType string
	Data         []byte
}

// Upload validates an image, writes it to the store and records it as an
// image material. Nothing is written unless every check passes; if the
// database insert fails the stored file is removed again.
func (s *MaterialService) Upload(ctx context.Context, owner int64, in UploadInput) (*model.Material, error) {
	if len(in.Data) == 0 {
		return nil, apperror.ValidationFailed("image", "no file uploaded")
	}
	if s.maxBytes > 0 && int64(len(in.Data)) > s.maxBytes {
		return nil, apperror.ValidationFailed("image",
			fmt.Sprintf("file exceeds the %d MiB limit", s.maxBytes>>20))
	}

	ext, err := storage.ValidateImage(in.DeclaredType, in.Data)
	if err != nil {
		return nil, err
	}

	path, err := s.store.Save(ctx, ext, in.Data)
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}

	m := &model.Material{
		UserID:   owner,
		Type:     model.MaterialImage,
		Name:     materialName(in.Filename),
		FilePath: path,
	}
	if err := s.repo.CreateMaterial(ctx, m); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.logger.Error("failed to remove orphaned upload",
				slog.String("path", path),
				slog.String("error", rmErr.Error()),
			)
		}
		return nil, fmt.Errorf("recording upload: %w", err)
	}

	metrics.UploadBytes.Observe(float64(len(in.Data)))
	s.logger.Info("file uploaded",
		slog.Int64("materialID", m.ID),
		slog.Int64("userID", owner),
		slog.String("path", path),
		slog.Int("bytes", len(in.Data)),
	)
	return m, nil
}

// List returns the owner's materials of one kind, newest first. An empty
// kind means images.
func (s *MaterialService) List(ctx context.Context, owner int64, kind string) ([]model.Material, error) {
	k := model.MaterialKind(strings.TrimSpace(kind))
	if k == "" {
		k = model.MaterialImage
	}
	if !k.Valid() {
		return nil, apperror.ValidationFailed("type",
			fmt.Sprintf("unknown material type %q; use image, emoji or divider", kind))
	}

	materials, err := s.repo.ListMaterials(ctx, owner, k)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	if materials == nil {
		materials = []model.Material{}
	}
	return materials, nil
}

// materialName keeps only the base name of a client-supplied file name.
func materialName(filename string) string {
	name := strings.TrimSpace(filepath.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	if utf8.RuneCountInString(name) > MaxMaterialNameLength {
		name = string([]rune(name)[:MaxMaterialNameLength])
	}
	return name
}
