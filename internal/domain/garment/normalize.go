package garment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var categoryAliases = map[string]Category{
	"top":      CategoryTop,
	"tops":     CategoryTop,
	"上衣":       CategoryTop,
	"上装":       CategoryTop,
	"外套":       CategoryTop,
	"shirt":    CategoryTop,
	"t-shirt":  CategoryTop,
	"jacket":   CategoryTop,
	"coat":     CategoryTop,
	"sweater":  CategoryTop,
	"hoodie":   CategoryTop,
	"bottom":   CategoryBottom,
	"bottoms":  CategoryBottom,
	"下装":       CategoryBottom,
	"裤子":       CategoryBottom,
	"裙子":       CategoryBottom,
	"pants":    CategoryBottom,
	"trousers": CategoryBottom,
	"jeans":    CategoryBottom,
	"shorts":   CategoryBottom,
	"skirt":    CategoryBottom,
	"shoes":    CategoryShoes,
	"shoe":     CategoryShoes,
	"鞋":        CategoryShoes,
	"鞋子":       CategoryShoes,
	"sneakers": CategoryShoes,
	"boots":    CategoryShoes,
	"footwear": CategoryShoes,
}

var seasonAliases = map[string][]string{
	"spring": {SeasonSpring},
	"春":      {SeasonSpring},
	"春季":     {SeasonSpring},
	"summer": {SeasonSummer},
	"夏":      {SeasonSummer},
	"夏季":     {SeasonSummer},
	"autumn": {SeasonAutumn},
	"fall":   {SeasonAutumn},
	"秋":      {SeasonAutumn},
	"秋季":     {SeasonAutumn},
	"winter": {SeasonWinter},
	"冬":      {SeasonWinter},
	"冬季":     {SeasonWinter},
	"四季":     {SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter},
	"all":    {SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter},
}

// ParseCategory resolves free text to a category.
func ParseCategory(value string) (Category, bool) {
	cat, ok := categoryAliases[strings.ToLower(strings.TrimSpace(value))]
	return cat, ok
}

// NormalizeSeasons maps season tokens to the canonical lower-case English tags, dropping
// anything unrecognised.
func NormalizeSeasons(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, 4)
	for _, value := range values {
		for _, season := range seasonAliases[strings.ToLower(strings.TrimSpace(value))] {
			if _, ok := seen[season]; ok {
				continue
			}
			seen[season] = struct{}{}
			out = append(out, season)
		}
	}
	return out
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}

// Normalize applies the record invariants to user supplied semantics.
func (s Semantics) Normalize() (Semantics, error) {
	cat, ok := ParseCategory(string(s.Category))
	if !ok {
		return Semantics{}, fmt.Errorf("category %q must be one of top, bottom, shoes", s.Category)
	}
	return Semantics{
		Category:        cat,
		Item:            scalarOrUnknown(s.Item),
		StyleSemantics:  normalizeList(s.StyleSemantics),
		SeasonSemantics: NormalizeSeasons(s.SeasonSemantics),
		UsageSemantics:  normalizeList(s.UsageSemantics),
		ColorSemantics:  scalarOrUnknown(s.ColorSemantics),
		Description:     scalarOrUnknown(s.Description),
	}, nil
}

func scalarOrUnknown(value string) string {
	if clean := strings.TrimSpace(value); clean != "" {
		return clean
	}
	return Unknown
}

// coerceSemantics turns an extracted JSON value into a validated record.
func coerceSemantics(raw json.RawMessage) (Semantics, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Semantics{}, errors.New("model output is not a JSON object")
	}
	if fields == nil {
		return Semantics{}, errors.New("model output is null")
	}
	sem := Semantics{
		Category:        Category(coerceScalar(fields["category"])),
		Item:            coerceScalar(fields["item"]),
		StyleSemantics:  coerceList(fields["style_semantics"]),
		SeasonSemantics: coerceList(fields["season_semantics"]),
		UsageSemantics:  coerceList(fields["usage_semantics"]),
		ColorSemantics:  coerceScalar(fields["color_semantics"]),
		Description:     coerceScalar(fields["description"]),
	}
	return sem.Normalize()
}

func coerceScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return Unknown
	case string:
		return scalarOrUnknown(v)
	case []any:
		return scalarOrUnknown(strings.Join(coerceList(v), ", "))
	case map[string]any:
		return Unknown
	default:
		return scalarOrUnknown(fmt.Sprint(v))
	}
}

func coerceList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		return normalizeList([]string{v})
	case []any:
		items := make([]string, 0, len(v))
		for _, elem := range v {
			switch e := elem.(type) {
			case nil, map[string]any, []any:
				continue
			case string:
				items = append(items, e)
			default:
				items = append(items, fmt.Sprint(e))
			}
		}
		return normalizeList(items)
	case map[string]any:
		return []string{}
	default:
		return normalizeList([]string{fmt.Sprint(v)})
	}
}
