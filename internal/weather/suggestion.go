package weather

import "strings"

// Suggestion maps temperature and weather description to a canned clothing
// suggestion. Rules are evaluated in fixed priority order: the rain keyword
// wins over any temperature band, then bands are checked ascending.
func Suggestion(temperature float64, description string) string {
	if strings.Contains(description, "雨") {
		return "天氣有雨，建議攜帶雨具並穿著防水鞋或外套"
	}

	switch {
	case temperature < 5:
		return "天氣嚴寒，請穿著厚重保暖衣物，如羽絨服、厚毛衣、手套、帽子和圍巾"
	case temperature < 10:
		return "天氣非常寒冷，請穿著保暖外套、毛衣和長褲"
	case temperature < 15:
		return "天氣較冷，建議穿著薄外套、毛衣或衛衣搭配長褲"
	case temperature < 20:
		return "天氣微涼，適合長袖T恤、襯衫搭配長褲或裙子，可攜帶薄外套"
	case temperature < 25:
		return "天氣舒適溫暖，適合短袖T恤、襯衫、長褲或裙子"
	case temperature < 30:
		return "天氣溫暖偏熱，建議穿著輕薄透氣的短袖、短褲或裙子"
	default:
		return "天氣炎熱，請穿著輕薄透氣衣物，並注意防曬與補充水分"
	}
}
