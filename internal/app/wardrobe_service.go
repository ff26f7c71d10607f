package app

import (
	"path"

	"smartcloset/internal/closet"
	"smartcloset/internal/model"
	"smartcloset/internal/repository"
)

// WardrobeEntry is one stored garment as shown to clients.
type WardrobeEntry struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}

// WardrobeService reads the wardrobe store for display.
type WardrobeService struct {
	repo      *repository.WardrobeRepository
	urlPrefix string
}

func NewWardrobeService(repo *repository.WardrobeRepository, urlPrefix string) *WardrobeService {
	if urlPrefix == "" {
		urlPrefix = "/wardrobe"
	}
	return &WardrobeService{repo: repo, urlPrefix: urlPrefix}
}

// ListGrouped returns every stored item grouped by its category folder.
func (s *WardrobeService) ListGrouped() (map[string][]WardrobeEntry, error) {
	items, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	return s.group(items), nil
}

// ListGroupedByUser returns one user's items grouped by category folder.
func (s *WardrobeService) ListGroupedByUser(userID uint) (map[string][]WardrobeEntry, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	items, err := s.repo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.group(items), nil
}

func (s *WardrobeService) group(items []model.WardrobeItem) map[string][]WardrobeEntry {
	grouped := make(map[string][]WardrobeEntry)
	for _, item := range items {
		folder := closet.CategoryFolder(item.Category)
		grouped[folder] = append(grouped[folder], WardrobeEntry{
			Filename: item.Filename,
			Path:     item.FilePath,
			URL:      path.Join(s.urlPrefix, item.FilePath),
		})
	}
	return grouped
}
