package app

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcloset/internal/closet"
	"smartcloset/internal/model"
)

type fakeStore struct {
	saved   int
	removed []string
	moveErr error
}

func (f *fakeStore) SaveUpload(r io.Reader, originalName string) (string, error) {
	f.saved++
	return "tmp/" + originalName, nil
}

func (f *fakeStore) MoveToCategory(processedPath, category string) (string, error) {
	if f.moveErr != nil {
		return "", f.moveErr
	}
	return closet.CategoryFolder(category) + "/" + path.Base(processedPath), nil
}

func (f *fakeStore) WardrobePath(relPath string) string {
	return "wardrobe/" + relPath
}

func (f *fakeStore) Remove(p string) {
	f.removed = append(f.removed, p)
}

type fakeRemover struct {
	failFor string
}

func (f *fakeRemover) Remove(p string) (string, error) {
	if f.failFor != "" && strings.Contains(p, f.failFor) {
		return "", errors.New("segmentation failed")
	}
	return strings.TrimSuffix(p, path.Ext(p)) + "_processed.png", nil
}

type fakeClassifier struct {
	desc closet.GarmentDescriptor
	err  error
}

func (f *fakeClassifier) Classify(ctx context.Context, p string) (closet.GarmentDescriptor, error) {
	if f.err != nil {
		return closet.GarmentDescriptor{}, f.err
	}
	return f.desc, nil
}

type fakeWardrobe struct {
	created []*model.WardrobeItem
	err     error
}

func (f *fakeWardrobe) Create(item *model.WardrobeItem) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, item)
	return nil
}

type fakeEvents struct {
	events []model.UploadEvent
}

func (f *fakeEvents) Publish(ctx context.Context, event model.UploadEvent) error {
	f.events = append(f.events, event)
	return nil
}

func uploadFixture(names ...string) []UploadFile {
	files := make([]UploadFile, 0, len(names))
	for _, name := range names {
		files = append(files, UploadFile{
			Name: name,
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("image bytes")), nil
			},
		})
	}
	return files
}

func classifiedAs(category string) closet.GarmentDescriptor {
	return closet.GarmentDescriptor{
		Category: category,
		Colors:   closet.StringList{"藍色"},
		Style:    closet.StringList{"休閒"},
		Occasion: closet.StringList{"日常"},
	}
}

func TestUploadBatchSuccess(t *testing.T) {
	store := &fakeStore{}
	wardrobe := &fakeWardrobe{}
	events := &fakeEvents{}
	svc := NewUploadService(store, &fakeRemover{}, &fakeClassifier{desc: classifiedAs("上衣")}, wardrobe, events)

	result, err := svc.UploadBatch(context.Background(), 7, uploadFixture("a.jpg", "b.png"))
	require.NoError(t, err)

	assert.Equal(t, "成功處理 2 張圖片", result.Message)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "a.jpg", result.Results[0].Original)
	assert.Equal(t, "a_processed.png", result.Results[0].Stored)

	require.Len(t, wardrobe.created, 2)
	item := wardrobe.created[0]
	assert.Equal(t, "上衣/a_processed.png", item.FilePath)
	assert.Equal(t, "上衣", item.Category)
	assert.Equal(t, uint(7), item.UserID)
	assert.Equal(t, `["藍色"]`, item.Color)

	// One temp removal per file, no intermediate cleanup.
	assert.Equal(t, []string{"tmp/a.jpg", "tmp/b.png"}, store.removed)
	assert.Empty(t, events.events)
}

func TestUploadBatchSkipsFailedFileInMultiBatch(t *testing.T) {
	store := &fakeStore{}
	wardrobe := &fakeWardrobe{}
	events := &fakeEvents{}
	svc := NewUploadService(store, &fakeRemover{failFor: "bad"}, &fakeClassifier{desc: classifiedAs("鞋子")}, wardrobe, events)

	result, err := svc.UploadBatch(context.Background(), 1, uploadFixture("good.jpg", "bad.jpg", "also-good.jpg"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.Len(t, wardrobe.created, 2)

	require.Len(t, events.events, 1)
	assert.Equal(t, StageBackgroundRemoved, events.events[0].Stage)
	assert.Equal(t, "bad.jpg", events.events[0].Filename)

	// Temp files for every file, including the failed one.
	assert.Contains(t, store.removed, "tmp/bad.jpg")
	assert.Len(t, store.removed, 3)
}

func TestUploadBatchSingleFileFailurePropagates(t *testing.T) {
	store := &fakeStore{}
	wardrobe := &fakeWardrobe{}
	svc := NewUploadService(store, &fakeRemover{failFor: "only"}, &fakeClassifier{desc: classifiedAs("上衣")}, wardrobe, &fakeEvents{})

	result, err := svc.UploadBatch(context.Background(), 1, uploadFixture("only.jpg"))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, wardrobe.created)
	assert.Equal(t, []string{"tmp/only.jpg"}, store.removed)
}

func TestUploadBatchClassifierErrorCleansProcessedFile(t *testing.T) {
	store := &fakeStore{}
	svc := NewUploadService(store, &fakeRemover{}, &fakeClassifier{err: errors.New("encode failed")}, &fakeWardrobe{}, &fakeEvents{})

	_, err := svc.UploadBatch(context.Background(), 1, uploadFixture("a.jpg"))

	require.Error(t, err)
	assert.Contains(t, store.removed, "tmp/a_processed.png")
	assert.Contains(t, store.removed, "tmp/a.jpg")
}

func TestUploadBatchPersistFailureRemovesStoredFile(t *testing.T) {
	store := &fakeStore{}
	events := &fakeEvents{}
	svc := NewUploadService(store, &fakeRemover{}, &fakeClassifier{desc: classifiedAs("包包")}, &fakeWardrobe{err: errors.New("db down")}, events)

	_, err := svc.UploadBatch(context.Background(), 1, uploadFixture("a.jpg"))

	require.Error(t, err)
	assert.Contains(t, store.removed, "wardrobe/包包/a_processed.png")
	require.Len(t, events.events, 1)
	assert.Equal(t, StagePersisted, events.events[0].Stage)
}

func TestUploadBatchFallbackDescriptorPublishesEvent(t *testing.T) {
	events := &fakeEvents{}
	wardrobe := &fakeWardrobe{}
	fallback := closet.DefaultDescriptor()
	svc := NewUploadService(&fakeStore{}, &fakeRemover{}, &fakeClassifier{desc: fallback}, wardrobe, events)

	result, err := svc.UploadBatch(context.Background(), 1, uploadFixture("a.jpg"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	require.Len(t, events.events, 1)
	assert.Equal(t, StageClassifierFallback, events.events[0].Stage)

	// Fallback items still land, in the special category.
	require.Len(t, wardrobe.created, 1)
	assert.Equal(t, closet.CategorySpecial, wardrobe.created[0].Category)
}

func TestUploadBatchValidation(t *testing.T) {
	svc := NewUploadService(&fakeStore{}, &fakeRemover{}, &fakeClassifier{}, &fakeWardrobe{}, nil)

	_, err := svc.UploadBatch(context.Background(), 0, uploadFixture("a.jpg"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UploadBatch(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestUploadBatchNilPublisherTolerated(t *testing.T) {
	svc := NewUploadService(&fakeStore{}, &fakeRemover{failFor: "a"}, &fakeClassifier{}, &fakeWardrobe{}, nil)

	_, err := svc.UploadBatch(context.Background(), 1, uploadFixture("a.jpg"))
	require.Error(t, err)
}
