// Package jsonextract recovers a single JSON value from free-form model output.
//
// Models wrap JSON in different ways, so extraction runs three tiers in order and returns
// the first candidate that parses: the whole text, the interior of the first fenced code
// block, and finally the object opened by the first '{' up to its matching '}'.
package jsonextract

import (
	"encoding/json"
	"regexp"
	"strings"

	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

var fencePattern = regexp.MustCompile("(?s)```(?:[jJ][sS][oO][nN])?\\s*(.*?)\\s*```")

type tier func(text string) (string, bool)

var tiers = []tier{wholeText, fencedBlock, braceSpan}

// Extract returns the first JSON value found in text.
func Extract(text string) (json.RawMessage, error) {
	for _, next := range tiers {
		candidate, ok := next(text)
		if !ok {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, apperrors.WithDetail(apperrors.CodeMalformedResponse, "no JSON found in model response", util.Truncate(text, util.DiagnosticLimit), nil)
}

// Decode extracts JSON from text and unmarshals it into v.
func Decode(text string, v any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func wholeText(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}

func fencedBlock(text string) (string, bool) {
	match := fencePattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// braceSpan returns the object opened by the first '{' up to its matching '}'.
// Braces inside string literals are skipped. An object that never closes falls
// back to the span ending at the last '}'.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}
