package recommendation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
)

func TestDeriveSeasons(t *testing.T) {
	cases := []struct {
		temp float64
		want []string
	}{
		{temp: -5, want: []string{garment.SeasonWinter}},
		{temp: 9.9, want: []string{garment.SeasonWinter}},
		{temp: 10, want: []string{garment.SeasonSpring, garment.SeasonAutumn}},
		{temp: 19.9, want: []string{garment.SeasonSpring, garment.SeasonAutumn}},
		{temp: 20, want: []string{garment.SeasonSummer}},
		{temp: 35, want: []string{garment.SeasonSummer}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, DeriveSeasons(tc.temp), "temp %v", tc.temp)
	}
}

func TestBasicTextBands(t *testing.T) {
	cases := []struct {
		feels float64
		want  string
	}{
		{feels: -1, want: "非常寒冷"},
		{feels: 0, want: "比较冷"},
		{feels: 10, want: "温度适中"},
		{feels: 20, want: "天气舒适"},
		{feels: 27.9, want: "天气舒适"},
		{feels: 28, want: "天气炎热"},
	}
	for _, tc := range cases {
		text := BasicText(weather.Reading{FeelsLike: tc.feels})
		require.Contains(t, text, tc.want, "feels %v", tc.feels)
	}
}

func TestBasicTextConditionClause(t *testing.T) {
	cases := []struct {
		name      string
		condition string
		feels     float64
		want      string
	}{
		{name: "rain", condition: "小雨", feels: 15, want: "带伞"},
		{name: "english rain", condition: "Light Rain", feels: 15, want: "带伞"},
		{name: "snow", condition: "Snow", feels: -3, want: "防滑"},
		{name: "hot sun", condition: "晴", feels: 30, want: "防晒"},
		{name: "clear and hot", condition: "Clear", feels: 26, want: "防晒"},
		{name: "cloud", condition: "多云", feels: 18, want: "薄外套以备不时之需"},
		{name: "overcast", condition: "Overcast", feels: 18, want: "薄外套以备不时之需"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Contains(t, BasicText(weather.Reading{Condition: tc.condition, FeelsLike: tc.feels}), tc.want)
		})
	}
}

func TestBasicTextMildSunHasNoClause(t *testing.T) {
	text := BasicText(weather.Reading{Condition: "晴", FeelsLike: 24})
	require.Equal(t, feelsLikeBands[3].detailed, text)
}

func TestBasicTextRainBeatsCloud(t *testing.T) {
	text := BasicText(weather.Reading{Condition: "阴有雨", FeelsLike: 15})
	require.Contains(t, text, "带伞")
	require.NotContains(t, text, "多云")
}

func TestSuggest(t *testing.T) {
	s := Suggest(weather.Reading{Temperature: 30, FeelsLike: 33, Condition: "晴"})
	require.Equal(t, "👕 建议穿短袖、短裤等夏季清凉衣物，注意防晒☀️", s.Suggestion)
	require.Equal(t, []string{garment.SeasonSummer}, s.Seasons)
	require.Equal(t, "当前晴，温度30°C (体感33°C)", s.Message)

	cloudy := Suggest(weather.Reading{Temperature: 15, FeelsLike: 14, Condition: "多云"})
	require.False(t, strings.Contains(cloudy.Suggestion, "，"))
}

func TestFilterBySeason(t *testing.T) {
	items := []garment.Item{
		item(1, garment.CategoryTop, "summer"),
		item(2, garment.CategoryTop, "Winter"),
		item(3, garment.CategoryBottom, "winter"),
		item(4, garment.CategoryShoes, "summer"),
	}

	tops := filterBySeason(items, garment.CategoryTop, []string{garment.SeasonWinter})
	require.Equal(t, []int64{2}, ids(tops))

	bottoms := filterBySeason(items, garment.CategoryBottom, []string{garment.SeasonSummer})
	require.Equal(t, []int64{3}, ids(bottoms))

	require.Empty(t, filterBySeason(nil, garment.CategoryTop, []string{garment.SeasonSummer}))
}

func item(id int64, cat garment.Category, seasons ...string) garment.Item {
	return garment.Item{ID: id, Semantics: garment.Semantics{Category: cat, SeasonSemantics: seasons}}
}

func ids(items []garment.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
