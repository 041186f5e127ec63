package garment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSeasons(t *testing.T) {
	require.Equal(t, []string{SeasonAutumn, SeasonWinter}, NormalizeSeasons([]string{"Fall", "冬", "autumn", "monsoon"}))
	require.Equal(t, []string{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}, NormalizeSeasons([]string{"四季"}))
	require.Equal(t, []string{}, NormalizeSeasons(nil))
}

func TestParseCategory(t *testing.T) {
	cat, ok := ParseCategory(" Jeans ")
	require.True(t, ok)
	require.Equal(t, CategoryBottom, cat)

	cat, ok = ParseCategory("鞋子")
	require.True(t, ok)
	require.Equal(t, CategoryShoes, cat)

	_, ok = ParseCategory("hat")
	require.False(t, ok)
}

func TestSemanticsNormalize(t *testing.T) {
	sem, err := Semantics{Category: "TOP", Item: "  ", StyleSemantics: []string{"casual", " casual ", ""}}.Normalize()
	require.NoError(t, err)
	require.Equal(t, CategoryTop, sem.Category)
	require.Equal(t, Unknown, sem.Item)
	require.Equal(t, []string{"casual"}, sem.StyleSemantics)
	require.NotNil(t, sem.SeasonSemantics)
	require.NotNil(t, sem.UsageSemantics)

	_, err = Semantics{Category: "accessory"}.Normalize()
	require.Error(t, err)
}

func TestCoerceSemanticsShapes(t *testing.T) {
	raw := json.RawMessage(`{
		"category": "bottom",
		"item": ["牛仔裤", "直筒"],
		"style_semantics": ["casual", 3, {"x": 1}, null],
		"season_semantics": "summer",
		"usage_semantics": {"bad": true},
		"color_semantics": 42,
		"description": null
	}`)
	sem, err := coerceSemantics(raw)
	require.NoError(t, err)
	require.Equal(t, CategoryBottom, sem.Category)
	require.Equal(t, "牛仔裤, 直筒", sem.Item)
	require.Equal(t, []string{"casual", "3"}, sem.StyleSemantics)
	require.Equal(t, []string{SeasonSummer}, sem.SeasonSemantics)
	require.Equal(t, []string{}, sem.UsageSemantics)
	require.Equal(t, "42", sem.ColorSemantics)
	require.Equal(t, Unknown, sem.Description)
}

func TestCoerceSemanticsRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`null`, `"top"`, `[{"category":"top"}]`} {
		_, err := coerceSemantics(json.RawMessage(raw))
		require.Error(t, err, raw)
	}
}
