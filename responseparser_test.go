package pdfquiz

import (
	"errors"
	"strings"
	"testing"
)

const twoQuestionsArray = `[
 {"question": "What does UDP lack?", "hint": "Think handshakes.", "options": [
   {"text": "Ordering guarantees", "correct": true, "explanation": "UDP does not order datagrams."},
   {"text": "Ports", "correct": false, "explanation": "UDP has ports."},
   {"text": "Checksums", "correct": false, "explanation": "UDP has checksums."},
   {"text": "Headers", "correct": false, "explanation": "UDP has headers."}]},
 {"question": "Which layer does TCP live in?", "hint": "Count up from the wire.", "options": [
   {"text": "Transport", "correct": true, "explanation": "TCP is a transport protocol."},
   {"text": "Link", "correct": false, "explanation": "Link is below IP."},
   {"text": "Physical", "correct": false, "explanation": "Physical is the wire."},
   {"text": "Session", "correct": false, "explanation": "Session is OSI layer 5."}]}
]`

func TestParseResponseDirect(t *testing.T) {
	raw := "Here you go:\n```json\n" + twoQuestionsArray + "\n```\nLet me know if you need more!"
	parsed, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if parsed.Warning != "" {
		t.Errorf("warning = %q, want none", parsed.Warning)
	}
	if len(parsed.Objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(parsed.Objects))
	}
	if q, _ := parsed.Objects[1]["question"].(string); q != "Which layer does TCP live in?" {
		t.Errorf("second question = %q", q)
	}
}

func TestParseResponseRepairsTrailingComma(t *testing.T) {
	raw := strings.Replace(twoQuestionsArray, `"Session is OSI layer 5."}]}`, `"Session is OSI layer 5."},]},`, 1)
	parsed, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if parsed.Warning != WarningRepaired {
		t.Errorf("warning = %q, want %q", parsed.Warning, WarningRepaired)
	}
	if len(parsed.Objects) != 2 {
		t.Errorf("got %d objects, want 2", len(parsed.Objects))
	}
}

func TestParseResponseSalvagesBareObjects(t *testing.T) {
	inner := strings.TrimSpace(twoQuestionsArray)
	inner = strings.TrimSuffix(strings.TrimPrefix(inner, "["), "]")
	objects := strings.SplitN(inner, "},\n {", 2)
	raw := "Sure! First one:\n" + objects[0] + "}\nAnd another {braces in prose} one:\n{" + objects[1] + "\nHope that helps."

	parsed, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if parsed.Warning != WarningPartial {
		t.Errorf("warning = %q, want %q", parsed.Warning, WarningPartial)
	}
	if len(parsed.Objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(parsed.Objects))
	}
}

func TestParseResponseBareObjectWithTrailingCommaOptions(t *testing.T) {
	raw := `Here is the question: {"question": "What does UDP lack?", "hint": "Compare it with TCP.", "options": [
 {"text": "Delivery guarantees", "correct": true, "explanation": "UDP never retransmits."},
 {"text": "Port numbers", "correct": false, "explanation": "UDP headers carry ports."},
 {"text": "Checksums", "correct": false, "explanation": "UDP has a checksum field."},
 {"text": "Datagrams", "correct": false, "explanation": "UDP is datagram based."},
]}`

	parsed, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if parsed.Warning != WarningPartial {
		t.Errorf("warning = %q, want %q", parsed.Warning, WarningPartial)
	}
	if len(parsed.Objects) != 1 {
		t.Fatalf("got %d objects, want the single question", len(parsed.Objects))
	}
	questions, err := NormalizeQuestions(parsed.Objects)
	if err != nil {
		t.Fatalf("NormalizeQuestions: %v", err)
	}
	if questions[0].Question != "What does UDP lack?" || len(questions[0].Options) != OptionsPerQuestion {
		t.Errorf("got %+v", questions[0])
	}
}

func TestParseResponseSalvagesTruncatedArray(t *testing.T) {
	// Cut in the middle of the second question.
	cut := strings.Index(twoQuestionsArray, `{"text": "Link"`)
	raw := twoQuestionsArray[:cut]

	parsed, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if parsed.Warning != WarningPartial {
		t.Errorf("warning = %q, want %q", parsed.Warning, WarningPartial)
	}
	if len(parsed.Objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(parsed.Objects))
	}
}

func TestParseResponseNoArray(t *testing.T) {
	_, err := ParseResponse("I'm sorry, I cannot help with that document.")
	if !errors.Is(err, ErrNoArrayFound) {
		t.Fatalf("err = %v, want ErrNoArrayFound", err)
	}
}

func TestParseResponseUnparseable(t *testing.T) {
	_, err := ParseResponse(`[ this is not json at all, "nope" ]`)
	var unparseable *UnparseableResponseError
	if !errors.As(err, &unparseable) {
		t.Fatalf("err = %v, want *UnparseableResponseError", err)
	}
	if unparseable.Detail == "" {
		t.Error("expected parse detail")
	}
}

func TestUnparseableDetailTruncated(t *testing.T) {
	e := newUnparseable(errors.New(strings.Repeat("x", 500)))
	if n := len([]rune(e.Detail)); n > maxErrorDetail+3 {
		t.Errorf("detail has %d runes", n)
	}
}
