package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"smartcloset/internal/closet"
	"smartcloset/internal/model"
)

var (
	ErrNoFiles = errors.New("no files uploaded")
)

// Pipeline stages recorded in upload events.
const (
	StageStored             = "stored"
	StageBackgroundRemoved  = "background_removed"
	StageClassified         = "classified"
	StagePersisted          = "persisted"
	StageClassifierFallback = "classifier_fallback"
)

// ImageStore is the filesystem side of the pipeline.
type ImageStore interface {
	SaveUpload(r io.Reader, originalName string) (string, error)
	MoveToCategory(processedPath, category string) (string, error)
	WardrobePath(relPath string) string
	Remove(path string)
}

// BackgroundRemover produces an RGBA cutout next to the input file.
type BackgroundRemover interface {
	Remove(path string) (string, error)
}

// GarmentClassifier returns a structurally valid descriptor for an image.
type GarmentClassifier interface {
	Classify(ctx context.Context, path string) (closet.GarmentDescriptor, error)
}

// WardrobeCreator persists the final wardrobe row.
type WardrobeCreator interface {
	Create(item *model.WardrobeItem) error
}

// UploadEventPublisher receives pipeline audit events. May be nil.
type UploadEventPublisher interface {
	Publish(ctx context.Context, event model.UploadEvent) error
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type UploadResultItem struct {
	Original string                   `json:"original"`
	Stored   string                   `json:"stored"`
	Info     closet.GarmentDescriptor `json:"info"`
}

type UploadResult struct {
	Message string             `json:"message"`
	Count   int                `json:"count"`
	Results []UploadResultItem `json:"results"`
}

// UploadService drives each file through store, background removal,
// classification, and the final relocate-and-persist step.
type UploadService struct {
	store      ImageStore
	remover    BackgroundRemover
	classifier GarmentClassifier
	wardrobe   WardrobeCreator
	events     UploadEventPublisher
}

func NewUploadService(
	store ImageStore,
	remover BackgroundRemover,
	classifier GarmentClassifier,
	wardrobe WardrobeCreator,
	events UploadEventPublisher,
) *UploadService {
	return &UploadService{
		store:      store,
		remover:    remover,
		classifier: classifier,
		wardrobe:   wardrobe,
		events:     events,
	}
}

// UploadBatch processes the files sequentially. In a multi-file batch a
// single file's failure is recorded and skipped; when exactly one file was
// submitted its failure becomes the whole request's failure.
func (s *UploadService) UploadBatch(ctx context.Context, userID uint, files []UploadFile) (*UploadResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	results := make([]UploadResultItem, 0, len(files))
	var firstErr error
	for _, file := range files {
		item, err := s.processOne(ctx, userID, file)
		if err != nil {
			log.Printf("upload of %s failed: %v", file.Name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, *item)
	}

	if len(files) == 1 && firstErr != nil {
		return nil, firstErr
	}

	return &UploadResult{
		Message: fmt.Sprintf("成功處理 %d 張圖片", len(results)),
		Count:   len(results),
		Results: results,
	}, nil
}

// processOne walks one file through the pipeline. The temp file written at
// the first stage is deleted on every exit path, exactly once.
func (s *UploadService) processOne(ctx context.Context, userID uint, file UploadFile) (*UploadResultItem, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload failed: %w", err)
	}

	tempPath, err := s.store.SaveUpload(src, file.Name)
	src.Close()
	if err != nil {
		s.publishEvent(ctx, userID, file.Name, StageStored, err.Error())
		return nil, err
	}
	defer s.store.Remove(tempPath)

	processedPath, err := s.remover.Remove(tempPath)
	if err != nil {
		s.publishEvent(ctx, userID, file.Name, StageBackgroundRemoved, err.Error())
		return nil, fmt.Errorf("background removal failed: %w", err)
	}

	desc, err := s.classifier.Classify(ctx, processedPath)
	if err != nil {
		s.store.Remove(processedPath)
		s.publishEvent(ctx, userID, file.Name, StageClassified, err.Error())
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	if desc.Fallback {
		s.publishEvent(ctx, userID, file.Name, StageClassifierFallback, "descriptor defaulted")
	}

	relPath, err := s.store.MoveToCategory(processedPath, desc.Category)
	if err != nil {
		s.store.Remove(processedPath)
		s.publishEvent(ctx, userID, file.Name, StagePersisted, err.Error())
		return nil, fmt.Errorf("store processed file failed: %w", err)
	}

	item := &model.WardrobeItem{
		Filename: path.Base(relPath),
		FilePath: relPath,
		Category: desc.Category,
		UserID:   userID,
	}
	item.SetColors(desc.Colors)
	item.SetStyles(desc.Style)
	item.SetOccasions(desc.Occasion)

	if err := s.wardrobe.Create(item); err != nil {
		s.store.Remove(s.store.WardrobePath(relPath))
		s.publishEvent(ctx, userID, file.Name, StagePersisted, err.Error())
		return nil, fmt.Errorf("persist wardrobe item failed: %w", err)
	}

	return &UploadResultItem{
		Original: file.Name,
		Stored:   item.Filename,
		Info:     desc,
	}, nil
}

// publishEvent is best-effort; a broker problem never fails an upload.
func (s *UploadService) publishEvent(ctx context.Context, userID uint, filename, stage, detail string) {
	if s.events == nil {
		return
	}
	event := model.UploadEvent{
		UserID:    userID,
		Filename:  filename,
		Stage:     stage,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("publish upload event failed: %v", err)
	}
}
