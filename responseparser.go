package pdfquiz

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseWarning flags that a response was recovered rather than parsed cleanly
type ParseWarning string

const (
	// WarningRepaired means syntactic repair was needed before the array parsed
	WarningRepaired ParseWarning = "repaired"
	// WarningPartial means only individual question objects could be salvaged
	WarningPartial ParseWarning = "partial_recovery"
)

// Message is a display string for the warning
func (w ParseWarning) Message() string {
	switch w {
	case WarningRepaired:
		return "The AI response was malformed and had to be repaired."
	case WarningPartial:
		return "The AI response was malformed; only some questions could be recovered."
	}
	return ""
}

// ParsedResponse holds the loosely typed question objects pulled from model output
type ParsedResponse struct {
	Objects []map[string]any
	Warning ParseWarning
}

var (
	codeFenceRe     = regexp.MustCompile("```(?i:json)?[ \t]*\r?\n?")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseResponse extracts a question array from raw model text. It tries a
// direct parse first, then a syntactic repair, then salvages individual objects.
func ParseResponse(raw string) (*ParsedResponse, error) {
	text := stripCodeFences(raw)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < 0 || end < start {
		return nil, ErrNoArrayFound
	}
	candidate := text[start : end+1]

	objects, parseErr := decodeObjectArray(candidate)
	if parseErr == nil {
		if looksLikeQuestions(objects) {
			return &ParsedResponse{Objects: objects}, nil
		}
		// The bracket span was an options list inside bare objects.
		if salvaged := salvageObjects(text); len(salvaged) > 0 {
			VerboseLog("Bracket span held no questions, salvaged %d objects", len(salvaged))
			return &ParsedResponse{Objects: salvaged, Warning: WarningPartial}, nil
		}
		return &ParsedResponse{Objects: objects}, nil
	}
	VerboseLog("Direct parse failed: %v", parseErr)

	if objects, err := decodeObjectArray(repairJSON(candidate)); err == nil && looksLikeQuestions(objects) {
		VerboseLog("Repaired response parsed into %d objects", len(objects))
		return &ParsedResponse{Objects: objects, Warning: WarningRepaired}, nil
	}

	if salvaged := salvageObjects(text); len(salvaged) > 0 {
		VerboseLog("Salvaged %d objects from malformed response", len(salvaged))
		return &ParsedResponse{Objects: salvaged, Warning: WarningPartial}, nil
	}

	return nil, newUnparseable(parseErr)
}

func stripCodeFences(s string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(s, ""))
}

// decodeObjectArray parses a JSON array. Elements that are not objects come
// back as nil maps so validation can report them by position.
func decodeObjectArray(s string) ([]map[string]any, error) {
	var elems []any
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(elems))
	for i, e := range elems {
		if m, ok := e.(map[string]any); ok {
			out[i] = m
		}
	}
	return out, nil
}

func looksLikeQuestions(objects []map[string]any) bool {
	if len(objects) == 0 {
		return true
	}
	for _, obj := range objects {
		if _, ok := obj["question"]; ok {
			return true
		}
	}
	return false
}

// repairJSON drops trailing commas, closes unbalanced arrays and cuts anything
// after the final bracket.
func repairJSON(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	if open, closed := strings.Count(s, "["), strings.Count(s, "]"); open > closed {
		s += strings.Repeat("]", open-closed)
	}
	if i := strings.LastIndex(s, "]"); i >= 0 {
		s = s[:i+1]
	}
	return s
}

// salvageObjects scans for top-level balanced {...} spans and keeps the ones
// that decode into an object with question text and an options array.
func salvageObjects(text string) []map[string]any {
	var (
		out      []map[string]any
		depth    int
		start    int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				if obj, ok := decodeQuestionObject(text[start : i+1]); ok {
					out = append(out, obj)
				}
			}
		}
	}
	return out
}

func decodeQuestionObject(span string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		if err := json.Unmarshal([]byte(trailingCommaRe.ReplaceAllString(span, "$1")), &obj); err != nil {
			return nil, false
		}
	}
	text, _ := obj["question"].(string)
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	if _, ok := obj["options"].([]any); !ok {
		return nil, false
	}
	return obj, true
}
