package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWardrobeItemTagListRoundTrip(t *testing.T) {
	var item WardrobeItem
	item.SetColors([]string{"紅色", "黑色"})
	item.SetStyles([]string{"休閒"})
	item.SetOccasions([]string{"日常", "約會"})

	assert.Equal(t, `["紅色","黑色"]`, item.Color)
	assert.Equal(t, []string{"紅色", "黑色"}, item.Colors())
	assert.Equal(t, []string{"休閒"}, item.Styles())
	assert.Equal(t, []string{"日常", "約會"}, item.Occasions())
}

func TestWardrobeItemEmptyTagsStoredAsEmptyArray(t *testing.T) {
	var item WardrobeItem
	item.SetColors(nil)
	item.SetOccasions(nil)

	assert.Equal(t, "[]", item.Color)
	assert.NotNil(t, item.Occasion)
	assert.Equal(t, "[]", *item.Occasion)
	assert.Empty(t, item.Colors())
}

func TestWardrobeItemNullOccasionTolerated(t *testing.T) {
	item := WardrobeItem{Occasion: nil}

	assert.Nil(t, item.Occasions())
}

func TestWardrobeItemMalformedTagsReadEmpty(t *testing.T) {
	item := WardrobeItem{Color: "not json"}

	assert.Empty(t, item.Colors())
}

func TestWardrobeItemTableName(t *testing.T) {
	var item WardrobeItem
	assert.Equal(t, "wardrobe", item.TableName())
}
