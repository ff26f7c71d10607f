package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcloset/internal/ai"
	"smartcloset/internal/model"
	"smartcloset/internal/storage"
)

func TestBuildOutfitPrompt(t *testing.T) {
	items := []model.WardrobeItem{
		{Filename: "shoes.png", Category: "鞋子"},
		{Filename: "top.png", Category: "上衣"},
		{Filename: "jeans.png", Category: "blue jeans"},
	}

	prompt := BuildOutfitPrompt("明天要去面試", items)

	assert.Contains(t, prompt, "上衣: top.png")
	assert.Contains(t, prompt, "下身: jeans.png")
	assert.Contains(t, prompt, "鞋子: shoes.png")
	assert.Contains(t, prompt, "使用者說：「明天要去面試」")

	// Vocabulary order: tops before bottoms before shoes.
	topIdx := strings.Index(prompt, "上衣: top.png")
	bottomIdx := strings.Index(prompt, "下身: jeans.png")
	shoesIdx := strings.Index(prompt, "鞋子: shoes.png")
	assert.Less(t, topIdx, bottomIdx)
	assert.Less(t, bottomIdx, shoesIdx)
}

func TestParsePriceReplyDirectJSON(t *testing.T) {
	result := ParsePriceReply(`{"suggested_price":"NT$ 450","explanation":"八成新棉質上衣"}`)

	assert.Equal(t, "NT$ 450", result.SuggestedPrice)
	assert.Equal(t, "八成新棉質上衣", result.Explanation)
}

func TestParsePriceReplyBracedFragment(t *testing.T) {
	reply := "估價結果如下：\n{\"suggested_price\":\"NT$ 1200\",\"explanation\":\"狀況良好\"}\n供您參考。"
	result := ParsePriceReply(reply)

	assert.Equal(t, "NT$ 1200", result.SuggestedPrice)
	assert.Equal(t, "狀況良好", result.Explanation)
}

func TestParsePriceReplyFallbackKeepsRawText(t *testing.T) {
	reply := "抱歉，我沒辦法估這件衣服的價格。"
	result := ParsePriceReply(reply)

	assert.Equal(t, "解析失敗", result.SuggestedPrice)
	assert.Equal(t, reply, result.Explanation)
}

func TestParsePriceReplyEmptyPriceFieldFallsBack(t *testing.T) {
	result := ParsePriceReply(`{"suggested_price":"","explanation":"無法判斷"}`)

	assert.Equal(t, "解析失敗", result.SuggestedPrice)
}

func newAdvisorWithStore(t *testing.T) (*AdvisorService, *storage.Store, string) {
	t.Helper()
	base := t.TempDir()
	store, err := storage.New(filepath.Join(base, "uploads"), filepath.Join(base, "wardrobe"))
	require.NoError(t, err)
	return NewAdvisorService(nil, store, nil, ai.ChatConfig{}, ai.ChatConfig{}), store, base
}

func TestResolvePriceImageExistingPath(t *testing.T) {
	svc, store, _ := newAdvisorWithStore(t)

	stored := store.WardrobePath("上衣/item_processed.png")
	require.NoError(t, os.WriteFile(stored, []byte("cutout"), 0o644))

	path, cleanup, err := svc.resolvePriceImage(PriceInput{ExistingImagePath: "上衣/item_processed.png"})
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, stored, path)
	assert.FileExists(t, path)
}

func TestResolvePriceImageRejectsEscapingPath(t *testing.T) {
	svc, _, base := newAdvisorWithStore(t)

	// A real file just outside the wardrobe root must stay unreachable.
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.jpg"), []byte("secret"), 0o644))

	for _, escaping := range []string{
		"../secret.jpg",
		"../../etc/passwd",
		"/etc/passwd",
		"上衣/../../secret.jpg",
	} {
		_, _, err := svc.resolvePriceImage(PriceInput{ExistingImagePath: escaping})
		assert.ErrorIs(t, err, ErrImageNotFound, escaping)
	}
}

func TestResolvePriceImageMissingFile(t *testing.T) {
	svc, _, _ := newAdvisorWithStore(t)

	_, _, err := svc.resolvePriceImage(PriceInput{ExistingImagePath: "上衣/nope.png"})
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestResolvePriceImageRequiresSomeImage(t *testing.T) {
	svc, _, _ := newAdvisorWithStore(t)

	_, _, err := svc.resolvePriceImage(PriceInput{})
	assert.ErrorIs(t, err, ErrMissingImage)
}
