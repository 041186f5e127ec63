package recommendation

import (
	"fmt"
	"strings"

	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
)

// DeriveSeasons maps an air temperature onto the season tags worth wearing.
func DeriveSeasons(temperature float64) []string {
	switch {
	case temperature < 10:
		return []string{garment.SeasonWinter}
	case temperature < 20:
		return []string{garment.SeasonSpring, garment.SeasonAutumn}
	default:
		return []string{garment.SeasonSummer}
	}
}

type band struct {
	below    float64
	detailed string
	short    string
}

var feelsLikeBands = []band{
	{below: 0, detailed: "🧥 今天非常寒冷，建议穿厚羽绒服、棉衣、毛衣等保暖衣物，搭配厚裤子和保暖鞋。", short: "🧥 建议穿厚羽绒服、棉衣等保暖衣物"},
	{below: 10, detailed: "🧥 今天比较冷，建议穿风衣、大衣、夹克等外套，内搭长袖衬衫或卫衣，搭配长裤。", short: "🧥 建议穿风衣、大衣、夹克等外套"},
	{below: 20, detailed: "👔 今天温度适中，建议穿薄外套、长袖衬衫、卫衣等，可以采用叠穿搭配，方便调节。", short: "👔 建议穿薄外套、长袖衬衫、卫衣"},
	{below: 28, detailed: "👕 今天天气舒适，建议穿短袖、薄长袖等轻便衣物，搭配休闲裤或牛仔裤。", short: "👕 建议穿短袖、薄长袖等轻便衣物"},
}

var hotBand = band{detailed: "👕 今天天气炎热，建议穿短袖、短裤等夏季清凉衣物，选择透气吸汗的面料。", short: "👕 建议穿短袖、短裤等夏季清凉衣物"}

func bandFor(feelsLike float64) band {
	for _, b := range feelsLikeBands {
		if feelsLike < b.below {
			return b
		}
	}
	return hotBand
}

type conditionKind int

const (
	conditionNone conditionKind = iota
	conditionRain
	conditionSnow
	conditionSun
	conditionCloud
)

// classifyCondition matches the free-text condition by substring, first match wins.
func classifyCondition(condition string, feelsLike float64) conditionKind {
	c := strings.ToLower(condition)
	switch {
	case containsAny(c, "雨", "rain"):
		return conditionRain
	case containsAny(c, "雪", "snow"):
		return conditionSnow
	case containsAny(c, "晴", "sun", "clear") && feelsLike > 25:
		return conditionSun
	case containsAny(c, "阴", "云", "cloud", "overcast"):
		return conditionCloud
	}
	return conditionNone
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// BasicText is the deterministic recommendation used when no model is available.
func BasicText(r weather.Reading) string {
	text := bandFor(r.FeelsLike).detailed
	switch classifyCondition(r.Condition, r.FeelsLike) {
	case conditionRain:
		text += " 今天有雨，记得带伞，避免穿浅色衣物，选择防水鞋。☂️"
	case conditionSnow:
		text += " 今天有雪，注意防滑保暖，选择防水防滑的鞋子。❄️"
	case conditionSun:
		text += " 今天阳光充足，外出注意防晒，可以搭配太阳镜和遮阳帽。☀️"
	case conditionCloud:
		text += " 今天多云，建议准备一件薄外套以备不时之需。☁️"
	}
	return text
}

// Suggest produces the short weather-only clothing advice.
func Suggest(r weather.Reading) Suggestion {
	text := bandFor(r.FeelsLike).short
	switch classifyCondition(r.Condition, r.FeelsLike) {
	case conditionRain:
		text += "，记得带伞☂️"
	case conditionSnow:
		text += "，注意防滑保暖❄️"
	case conditionSun:
		text += "，注意防晒☀️"
	}
	return Suggestion{
		Weather:    r,
		Suggestion: text,
		Seasons:    DeriveSeasons(r.Temperature),
		Message:    fmt.Sprintf("当前%s，温度%g°C (体感%g°C)", r.Condition, r.Temperature, r.FeelsLike),
	}
}

// filterBySeason returns the items of category whose season tags intersect seasons, or every
// item of that category when none match.
func filterBySeason(items []garment.Item, category garment.Category, seasons []string) []garment.Item {
	want := make(map[string]struct{}, len(seasons))
	for _, s := range seasons {
		want[strings.ToLower(s)] = struct{}{}
	}
	var all, matched []garment.Item
	for _, item := range items {
		if item.Category != category {
			continue
		}
		all = append(all, item)
		for _, s := range garment.NormalizeSeasons(item.SeasonSemantics) {
			if _, ok := want[s]; ok {
				matched = append(matched, item)
				break
			}
		}
	}
	if len(matched) == 0 {
		return all
	}
	return matched
}
