package closet

import (
	"encoding/json"
	"strings"
)

// Closed category vocabulary. Every stored item folder is named after one of
// these; anything the model cannot place lands in CategorySpecial.
const (
	CategoryTop       = "上衣"
	CategoryBottom    = "下身"
	CategoryOuterwear = "外套"
	CategoryDress     = "洋裝"
	CategoryShoes     = "鞋子"
	CategoryBag       = "包包"
	CategoryHat       = "帽子"
	CategorySocks     = "襪子"
	CategoryAccessory = "飾品"
	CategorySpecial   = "特殊"
)

// Categories in folder-creation order.
var Categories = []string{
	CategoryTop,
	CategoryBottom,
	CategoryOuterwear,
	CategoryDress,
	CategoryShoes,
	CategoryBag,
	CategoryHat,
	CategorySocks,
	CategoryAccessory,
	CategorySpecial,
}

// bottomKeywords force any category naming trousers into the bottom folder,
// whatever the literal category value says.
var bottomKeywords = []string{"pants", "jeans", "牛仔褲"}

// CategoryFolder maps a classified category to its storage folder name.
func CategoryFolder(category string) string {
	lowered := strings.ToLower(category)
	for _, kw := range bottomKeywords {
		if strings.Contains(lowered, kw) {
			return CategoryBottom
		}
	}
	for _, known := range Categories {
		if category == known {
			return known
		}
	}
	return CategorySpecial
}

// StringList accepts either a JSON array of strings or a bare string, which
// is normalized to a one-element list. Anything else decodes to empty.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = StringList{}
		} else {
			*l = StringList{single}
		}
		return nil
	}
	*l = StringList{}
	return nil
}

// GarmentDescriptor is the structured classification of one clothing image.
// All four fields are always present after classification.
type GarmentDescriptor struct {
	Category string     `json:"category"`
	Colors   StringList `json:"colors"`
	Style    StringList `json:"style"`
	Occasion StringList `json:"occasion"`

	// Fallback marks descriptors that defaulted: unparseable replies, or
	// parseable ones that carried no category.
	Fallback bool `json:"-"`
}

// DefaultDescriptor is returned whenever the model reply cannot be parsed.
func DefaultDescriptor() GarmentDescriptor {
	return GarmentDescriptor{
		Category: CategorySpecial,
		Colors:   StringList{},
		Style:    StringList{},
		Occasion: StringList{},
		Fallback: true,
	}
}

// ParseDescriptor parses a model reply into a descriptor. It tries a direct
// JSON parse first, then the first brace-delimited substring, and finally
// falls back to the default descriptor. It never fails.
func ParseDescriptor(reply string) GarmentDescriptor {
	reply = strings.TrimSpace(reply)

	var desc GarmentDescriptor
	if err := json.Unmarshal([]byte(reply), &desc); err == nil {
		return normalize(desc)
	}

	if fragment, ok := extractBraced(reply); ok {
		if err := json.Unmarshal([]byte(fragment), &desc); err == nil {
			return normalize(desc)
		}
	}

	return DefaultDescriptor()
}

// extractBraced returns the substring from the first '{' to the first '}'
// after it, inclusive.
func extractBraced(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(s[start:], '}')
	if end < 0 {
		return "", false
	}
	return s[start : start+end+1], true
}

func normalize(desc GarmentDescriptor) GarmentDescriptor {
	if strings.TrimSpace(desc.Category) == "" {
		desc.Category = CategorySpecial
		desc.Fallback = true
	}
	if desc.Colors == nil {
		desc.Colors = StringList{}
	}
	if desc.Style == nil {
		desc.Style = StringList{}
	}
	if desc.Occasion == nil {
		desc.Occasion = StringList{}
	}
	return desc
}
