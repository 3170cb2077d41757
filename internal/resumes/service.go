package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/25eliu/ClubApp/internal/extract"
	"github.com/25eliu/ClubApp/internal/shared/storage/object"
	"github.com/25eliu/ClubApp/internal/shared/telemetry"
	"github.com/25eliu/ClubApp/internal/shared/util"
)

const storeNamespace = "resumes"

// AnalysisCleaner removes the analyses that belong to a resume.
type AnalysisCleaner interface {
	DeleteForResume(ctx context.Context, resumeID string) (bool, error)
}

// Service contains business logic for resumes.
type Service struct {
	Store    object.ObjectStore
	Repo     Repo
	Analyses AnalysisCleaner
}

// Upload extracts the text of the file, keeps the original in the object store
// and records the resume. When a resume with the same text already exists it
// is returned together with ErrDuplicate.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Resume, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Resume{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Resume{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Resume{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	mimeType := extract.MimeFromFileName(fileName)
	text, err := extract.ExtractTextFromBytes(ctx, data, mimeType, fileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) || errors.Is(err, extract.ErrEmptyText) {
			return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Resume{}, err
	}

	hash := ContentHash(text)
	if existing, err := s.Repo.GetByHash(ctx, hash); err == nil {
		return existing, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return Resume{}, err
	}

	storageKey, size, storedMime, err := s.Store.Save(ctx, storeNamespace, fileName, bytes.NewReader(data))
	if err != nil {
		return Resume{}, fmt.Errorf("store upload: %w", err)
	}
	if mimeType == "" {
		mimeType = storedMime
	}

	resume := Resume{
		ID:             uuid.NewString(),
		FileName:       fileName,
		MimeType:       mimeType,
		SizeBytes:      size,
		StorageKey:     storageKey,
		Text:           text,
		ContentHash:    hash,
		CharacterCount: utf8.RuneCountInString(text),
		WordCount:      len(strings.Fields(text)),
		UploadedAt:     time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		s.discard(ctx, storageKey)
		if errors.Is(err, ErrDuplicate) {
			existing, getErr := s.Repo.GetByHash(ctx, hash)
			if getErr != nil {
				return Resume{}, getErr
			}
			return existing, ErrDuplicate
		}
		return Resume{}, err
	}

	telemetry.Info("resume.uploaded", map[string]any{
		"resume_id":  resume.ID,
		"file_name":  resume.FileName,
		"size_bytes": resume.SizeBytes,
		"word_count": resume.WordCount,
	})
	return resume, nil
}

// ContentHash is the deduplication key of extracted resume text.
func ContentHash(text string) string {
	return util.HashKey(text)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Resume, error) {
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// ResumeText returns the extracted text of the resume.
func (s *Service) ResumeText(ctx context.Context, id string) (string, error) {
	resume, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return resume.Text, nil
}

// Delete removes the resume, its analyses and the stored original.
func (s *Service) Delete(ctx context.Context, id string) error {
	resume, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.Analyses != nil {
		if _, err := s.Analyses.DeleteForResume(ctx, id); err != nil {
			return fmt.Errorf("delete analyses: %w", err)
		}
	}
	removed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.discard(ctx, resume.StorageKey)
	telemetry.Info("resume.deleted", map[string]any{"resume_id": id})
	return nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.Repo.Stats(ctx)
}

func (s *Service) discard(ctx context.Context, storageKey string) {
	if storageKey == "" || s.Store == nil {
		return
	}
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		telemetry.Warn("resume.object_delete_failed", map[string]any{
			"storage_key": storageKey,
			"error":       err,
		})
	}
}
