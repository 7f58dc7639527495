package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

var (
	// ErrFileTooLarge indicates the upload exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrUnsupportedFileType indicates the sniffed MIME type is not allowed.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// allowedUploadTypes is the sniffed MIME allow-list for course material.
var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"application/zip": {},
	"image/png":       {},
	"image/jpeg":      {},
	"image/gif":       {},
	"video/mp4":       {},
	"video/webm":      {},
	"audio/mpeg":      {},
	"text/plain":      {},
}

// FileStorage abstracts the blob store holding uploaded course material.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores course material files.
type UploadService interface {
	Upload(ctx context.Context, userID uint, fileName string, reader io.Reader) (dto.UploadResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.UploadResponse, error)
}

type uploadService struct {
	storage  FileStorage
	records  repository.UploadRepository
	maxBytes int64
	logger   zerolog.Logger
}

// NewUploadService builds the upload service. maxMB caps the accepted file
// size in megabytes.
func NewUploadService(storage FileStorage, records repository.UploadRepository, maxMB int, logger zerolog.Logger) UploadService {
	return &uploadService{
		storage:  storage,
		records:  records,
		maxBytes: int64(maxMB) * 1024 * 1024,
		logger:   logger.With().Str("component", "upload_service").Logger(),
	}
}

func (s *uploadService) Upload(ctx context.Context, userID uint, fileName string, reader io.Reader) (dto.UploadResponse, error) {
	ctx, span := otel.Tracer("edubridge/upload").Start(ctx, "upload.store")
	defer span.End()

	// Read one byte past the cap so oversize files are detected without
	// buffering the whole stream.
	data, err := io.ReadAll(io.LimitReader(reader, s.maxBytes+1))
	if err != nil {
		return dto.UploadResponse{}, err
	}
	if int64(len(data)) > s.maxBytes {
		return dto.UploadResponse{}, ErrFileTooLarge
	}

	detected := mimetype.Detect(data)
	baseType := detected.String()
	if idx := strings.IndexByte(baseType, ';'); idx >= 0 {
		baseType = baseType[:idx]
	}
	if _, ok := allowedUploadTypes[baseType]; !ok {
		return dto.UploadResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, baseType)
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	span.SetAttributes(
		attribute.String("upload.mime", baseType),
		attribute.Int("upload.bytes", len(data)),
	)

	url, err := s.storage.Upload(ctx, fileName, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		return dto.UploadResponse{}, err
	}

	record := models.UploadRecord{
		UserID:    &userID,
		FileName:  fileName,
		URL:       url,
		MimeType:  baseType,
		SizeBytes: int64(len(data)),
		Checksum:  checksum,
	}
	if err := s.records.Create(ctx, &record); err != nil {
		return dto.UploadResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Str("file", fileName).
		Str("mime", baseType).
		Int64("bytes", record.SizeBytes).
		Msg("file uploaded")

	return dto.NewUploadResponse(record), nil
}

func (s *uploadService) ListByUser(ctx context.Context, userID uint) ([]dto.UploadResponse, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.UploadResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewUploadResponse(record))
	}
	return responses, nil
}
