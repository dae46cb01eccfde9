package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	"recipe-finder/internal/pkg/common"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// DefaultMaxSizeBytes 上傳圖片大小上限
const DefaultMaxSizeBytes int64 = 5_000_000

// Upload 驗證通過的圖片
type Upload struct {
	Data     []byte
	MIMEType string
	Format   string
	Width    int
	Height   int
}

// Service 圖片驗證服務
type Service struct {
	maxSizeBytes int64
}

// NewService 創建新的圖片驗證服務
func NewService(maxSizeBytes int64) *Service {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	return &Service{maxSizeBytes: maxSizeBytes}
}

// MaxSizeBytes 大小上限
func (s *Service) MaxSizeBytes() int64 {
	return s.maxSizeBytes
}

// DecodeBase64 解析 base64 圖片，可帶 data:image/...;base64, 前綴
func (s *Service) DecodeBase64(imageData string) (*Upload, error) {
	imageData = strings.TrimSpace(imageData)
	if imageData == "" {
		return nil, common.ErrEmptyImage
	}

	if strings.HasPrefix(imageData, "data:") {
		parts := strings.SplitN(imageData, ",", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], "data:image/") {
			return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid data URI header"))
		}
		imageData = parts[1]
	}

	// 先以編碼長度粗估，避免解碼超大內容
	if int64(base64.StdEncoding.DecodedLen(len(imageData))) > s.maxSizeBytes+3 {
		return nil, common.ErrInvalidImageSize
	}

	decoded, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	return s.Validate(decoded)
}

// Validate 檢查大小、MIME 類型並確認可解碼
func (s *Service) Validate(data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, common.ErrEmptyImage
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported content type: %s", mtype.String()))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	return &Upload{
		Data:     data,
		MIMEType: mtype.String(),
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
