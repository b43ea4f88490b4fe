package pdfquiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseManualQuestions validates a pasted JSON array strictly: no repair, and
// every option must state "correct" as a boolean.
func ParseManualQuestions(text string) ([]Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text area is empty: %w", ErrEmptyImport)
	}

	var objects []map[string]any
	if err := json.Unmarshal([]byte(text), &objects); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of question objects wrapped in [ ] brackets: %w", err)
	}
	if len(objects) == 0 {
		return nil, ErrEmptyImport
	}

	for i, obj := range objects {
		options, _ := obj["options"].([]any)
		for j, o := range options {
			opt, ok := o.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := opt["correct"].(bool); !ok {
				return nil, &InvalidQuestionShapeError{
					Index:  i,
					Reason: fmt.Sprintf(`option %d: "correct" must be true or false`, j+1),
				}
			}
		}
	}
	return NormalizeQuestions(objects)
}

// DefaultQuestions is the built-in sample quiz offered before anything is generated
func DefaultQuestions() []Question {
	return []Question{
		{
			Question: "Which of the following is a characteristic of the User Datagram Protocol (UDP)?",
			Hint:     "Think about the connection type and reliability features.",
			Options: []Option{
				{Text: "Guaranteed delivery of packets", Explanation: "UDP has no acknowledgments or retransmission, so delivery is not guaranteed."},
				{Text: "Connection-oriented communication", Explanation: "UDP sends datagrams without establishing a connection first."},
				{Text: "Unreliable and connectionless", Correct: true, Explanation: "UDP is connectionless and does not guarantee delivery, making it unreliable but fast."},
				{Text: "Flow and congestion control", Explanation: "Flow and congestion control are TCP features that UDP omits."},
			},
		},
		{
			Question: "What is the main advantage of using UDP over TCP for certain applications?",
			Hint:     "Consider the trade-off between reliability and speed.",
			Options: []Option{
				{Text: "Higher reliability and error checking", Explanation: "TCP, not UDP, provides reliability through acknowledgments and retransmission."},
				{Text: "Lower overhead and faster transmission", Correct: true, Explanation: "UDP has lower overhead and faster transmission because it doesn't have reliability mechanisms."},
				{Text: "In-order delivery of packets", Explanation: "UDP does not reorder datagrams; ordering is a TCP guarantee."},
				{Text: "Robust congestion control", Explanation: "UDP leaves congestion control to the application."},
			},
		},
		{
			Question: "Which of the following is a key feature of the Transmission Control Protocol (TCP)?",
			Hint:     "TCP is known for its reliability features.",
			Options: []Option{
				{Text: "It is a connectionless protocol.", Explanation: "TCP performs a handshake and maintains connection state."},
				{Text: "It provides reliable, in-order byte-stream data transfer.", Correct: true, Explanation: "TCP provides reliable, in-order byte-stream data transfer through acknowledgments and retransmissions."},
				{Text: "It has a smaller header size than UDP.", Explanation: "TCP's 20-byte minimum header is larger than UDP's 8-byte header."},
				{Text: "It is best suited for real-time applications where some packet loss is acceptable.", Explanation: "Loss-tolerant real-time traffic usually prefers UDP."},
			},
		},
	}
}
