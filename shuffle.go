package pdfquiz

import "math/rand/v2"

// ShuffleOptions randomizes option order in place. Correctness travels with
// each option, so only the position of the right answer changes.
func ShuffleOptions(options []Option) {
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

// shuffledCopy deep-copies questions and shuffles each option list independently
func shuffledCopy(questions []Question) []Question {
	out := cloneQuestions(questions)
	for i := range out {
		ShuffleOptions(out[i].Options)
	}
	return out
}
