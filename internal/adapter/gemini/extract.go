// internal/adapter/gemini/extract.go

package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"brandtrust/internal/domain/trust"
)

// The model is asked for bare JSON but often wraps it in a code fence or
// prose. These patterns are tried in order; the first valid parse wins.
var jsonPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile(`(?s)(\{.*\})`),
}

// extractJSON pulls the first JSON object out of the model's reply text
func extractJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)

	for _, pattern := range jsonPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if obj, ok := tryParse(match[1]); ok {
			return obj, nil
		}
	}

	// Truncated output loses closing braces. Balance them and retry.
	if repaired, ok := balanceBraces(text); ok {
		if obj, ok := tryParse(repaired); ok {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("no parseable JSON in model response")
}

func tryParse(candidate string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// balanceBraces takes everything from the first opening brace and appends
// the closing delimiters a truncated reply is missing
func balanceBraces(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}
	fragment := text[start:]

	var open []rune
	inString := false
	escaped := false
	for _, r := range fragment {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case !inString && (r == '{' || r == '['):
			open = append(open, r)
		case !inString && (r == '}' || r == ']'):
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}
	if len(open) == 0 {
		return "", false
	}

	// An unterminated string has to be closed first
	if inString {
		fragment += `"`
	} else {
		fragment = strings.TrimRight(fragment, ", \n\t")
	}

	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == '{' {
			fragment += "}"
		} else {
			fragment += "]"
		}
	}
	return fragment, true
}

// parseJudgment interprets the model's JSON as a component judgment. The
// score is read from "<component>_score" first, then from "score".
func parseJudgment(component, text string) (trust.Judgment, error) {
	obj, err := extractJSON(text)
	if err != nil {
		return trust.Judgment{}, err
	}

	score, ok := numberField(obj, component+"_score")
	if !ok {
		score, ok = numberField(obj, "score")
	}
	if !ok {
		return trust.Judgment{}, fmt.Errorf("model response has no score field")
	}

	judgment := trust.Judgment{
		Score:      trust.Clamp(score),
		Confidence: stringField(obj, "confidence_level"),
	}
	if judgment.Confidence == "" {
		judgment.Confidence = "medium"
	}

	if factors, ok := obj["key_factors"].([]any); ok {
		for _, f := range factors {
			if s, ok := f.(string); ok && s != "" {
				judgment.KeyFactors = append(judgment.KeyFactors, s)
			}
		}
	}
	return judgment, nil
}

func numberField(obj map[string]any, key string) (float64, bool) {
	switch v := obj[key].(type) {
	case float64:
		return v, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return ""
}
