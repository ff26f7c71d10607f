package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"smartcloset/internal/ai"
	"smartcloset/internal/closet"
	"smartcloset/internal/model"
	"smartcloset/internal/repository"
	"smartcloset/internal/storage"
	"smartcloset/internal/vision"
)

var (
	ErrWardrobeEmpty = errors.New("wardrobe is empty")
	ErrMissingImage  = errors.New("image file or existing image path required")
	ErrImageNotFound = errors.New("referenced image not found")
)

const advisorSystemHint = "你是一位專業的時尚穿搭師，幫使用者根據他的敘述推薦穿搭。"

const priceSystemPrompt = "你是專業的二手衣物估價師。請根據圖片分析衣物並給出準確估價，回應必須是純 JSON 格式。"

// AdvisorService forwards wardrobe contents or garment condition to the
// language model for free-form or structured recommendations.
type AdvisorService struct {
	wardrobeRepo *repository.WardrobeRepository
	store        *storage.Store
	llm          *ai.OpenAICompatibleClient
	chatCfg      ai.ChatConfig
	visionCfg    ai.ChatConfig
}

type OutfitAdvice struct {
	Prompt         string `json:"prompt"`
	Recommendation string `json:"recommendation"`
}

type PriceInput struct {
	ConditionPercentage int
	OriginalValue       string
	Upload              *UploadFile
	ExistingImagePath   string
}

type PriceResult struct {
	SuggestedPrice string `json:"suggested_price"`
	Explanation    string `json:"explanation"`
}

func NewAdvisorService(
	wardrobeRepo *repository.WardrobeRepository,
	store *storage.Store,
	llm *ai.OpenAICompatibleClient,
	chatCfg ai.ChatConfig,
	visionCfg ai.ChatConfig,
) *AdvisorService {
	return &AdvisorService{
		wardrobeRepo: wardrobeRepo,
		store:        store,
		llm:          llm,
		chatCfg:      chatCfg,
		visionCfg:    visionCfg,
	}
}

// OutfitAdvice builds a prompt from the full wardrobe and the user's free
// text, forwards it, and returns the raw reply next to the prompt used. The
// reply is not validated structurally.
func (s *AdvisorService) OutfitAdvice(ctx context.Context, userInput string) (*OutfitAdvice, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.wardrobeRepo.ListAll()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrWardrobeEmpty
	}

	prompt := BuildOutfitPrompt(userInput, items)
	reply, err := s.llm.Complete(ctx, s.chatCfg, []ai.ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("outfit advice request failed: %w", err)
	}

	return &OutfitAdvice{
		Prompt:         prompt,
		Recommendation: strings.TrimSpace(reply),
	}, nil
}

// SuggestPrice estimates a resale price for a garment photo given its
// condition and original price.
func (s *AdvisorService) SuggestPrice(ctx context.Context, input PriceInput) (*PriceResult, error) {
	imagePath, cleanup, err := s.resolvePriceImage(input)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	imageBase64, err := vision.EncodeJPEGBase64(imagePath)
	if err != nil {
		return nil, fmt.Errorf("prepare price image failed: %w", err)
	}

	prompt := buildPricePrompt(input.ConditionPercentage, input.OriginalValue)
	reply, err := s.llm.VisionComplete(ctx, s.visionCfg, prompt, imageBase64, ai.VisionOptions{
		System:    priceSystemPrompt,
		MaxTokens: 200,
		JSONMode:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("price suggestion request failed: %w", err)
	}

	result := ParsePriceReply(reply)
	return &result, nil
}

func (s *AdvisorService) resolvePriceImage(input PriceInput) (string, func(), error) {
	noop := func() {}

	if input.Upload != nil {
		src, err := input.Upload.Open()
		if err != nil {
			return "", noop, fmt.Errorf("open price image failed: %w", err)
		}
		defer src.Close()

		tempPath, err := s.store.SaveUpload(src, input.Upload.Name)
		if err != nil {
			return "", noop, err
		}
		return tempPath, func() { s.store.Remove(tempPath) }, nil
	}

	if input.ExistingImagePath != "" {
		// The path must stay inside the wardrobe root.
		if !filepath.IsLocal(filepath.FromSlash(input.ExistingImagePath)) {
			return "", noop, ErrImageNotFound
		}
		fullPath := s.store.WardrobePath(input.ExistingImagePath)
		if _, err := os.Stat(fullPath); err != nil {
			return "", noop, ErrImageNotFound
		}
		return fullPath, noop, nil
	}

	return "", noop, ErrMissingImage
}

// BuildOutfitPrompt enumerates the wardrobe as "category: filename" lines,
// category folders in vocabulary order, and embeds the user's request.
func BuildOutfitPrompt(userInput string, items []model.WardrobeItem) string {
	grouped := make(map[string][]string)
	for _, item := range items {
		folder := closet.CategoryFolder(item.Category)
		grouped[folder] = append(grouped[folder], folder+": "+item.Filename)
	}

	var lines []string
	seen := make(map[string]bool)
	for _, category := range closet.Categories {
		lines = append(lines, grouped[category]...)
		seen[category] = true
	}
	var rest []string
	for folder := range grouped {
		if !seen[folder] {
			rest = append(rest, folder)
		}
	}
	sort.Strings(rest)
	for _, folder := range rest {
		lines = append(lines, grouped[folder]...)
	}

	return fmt.Sprintf(`%s
以下是使用者的衣櫃清單，每件衣服都已經去背，可以任意搭配使用：

%s

使用者說：「%s」

請根據使用者的需求與語境，自行推斷場合、溫度、活動類型、需求，並從衣櫥中挑選出一套合適的穿搭。

請只回傳以下 JSON 格式，不需要多餘解釋文字，例如：
{
  "上衣": "xxx.png",
  "下身": "yyy.webp",
  "鞋子": "zzz.png",
  "外套": "aaa.jpg",
  "配件": "bbb.png"
}
如果不需要外套或配件，請填入 null。`, advisorSystemHint, strings.Join(lines, "\n"), userInput)
}

func buildPricePrompt(conditionPercentage int, originalValue string) string {
	return fmt.Sprintf(`你是一位專業的二手衣物估價師，請根據圖片和以下資訊生成建議售價：
- 新舊程度：%d%%（數字越高越新）
- 原始價格：%s

請仔細觀察圖片中的衣物，評估其材質、品牌、款式和實際狀況。

**重要：請務必回傳標準 JSON 格式，不要有額外文字：**
{"suggested_price": "NT$ XXX", "explanation": "簡短估價理由"}`, conditionPercentage, originalValue)
}

// ParsePriceReply parses the model's estimate: direct JSON, then the first
// brace-delimited substring, then a literal-text fallback. It never fails.
func ParsePriceReply(reply string) PriceResult {
	reply = strings.TrimSpace(reply)

	var result PriceResult
	if err := json.Unmarshal([]byte(reply), &result); err == nil && result.SuggestedPrice != "" {
		return result
	}

	start := strings.IndexByte(reply, '{')
	if start >= 0 {
		if end := strings.IndexByte(reply[start:], '}'); end >= 0 {
			fragment := reply[start : start+end+1]
			var extracted PriceResult
			if err := json.Unmarshal([]byte(fragment), &extracted); err == nil && extracted.SuggestedPrice != "" {
				return extracted
			}
		}
	}

	return PriceResult{SuggestedPrice: "解析失敗", Explanation: reply}
}
