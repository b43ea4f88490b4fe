package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pdfquiz"
)

const letters = "ABCD"

func runPlay(cfg pdfquiz.Config, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	id := fs.String("id", "", "Quiz id (default: active quiz, or the built-in sample)")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	title, questions, err := launchForPlay(ctx, svc.Store, *id)
	if err != nil {
		return err
	}

	session := pdfquiz.NewSession(questions)
	session.Start()
	play(session, title, bufio.NewScanner(in), out)
	return nil
}

// launchForPlay picks the quiz to play and launches it. Without any stored
// quiz the built-in sample questions are used.
func launchForPlay(ctx context.Context, store *pdfquiz.CollectionStore, id string) (string, []pdfquiz.Question, error) {
	if id == "" {
		if active := store.GetActive(ctx); active != nil {
			id = active.ID
		}
	}
	if id == "" {
		return "Sample Quiz", pdfquiz.DefaultQuestions(), nil
	}
	item, err := store.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	questions, err := store.Launch(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return item.Title, questions, nil
}

// play drives a session from line-oriented input. Commands at the answer
// prompt: A-D, h (hint), s (skip), b N (back to question N), q (finish).
func play(s *pdfquiz.Session, title string, scanner *bufio.Scanner, out io.Writer) {
	fmt.Fprintf(out, "🎯 Starting quiz: %s\n", title)
	fmt.Fprintf(out, "📝 Questions: %d\n\n", s.Total())

	for s.Phase == pdfquiz.PhaseInProgress {
		q, ok := s.Current()
		if !ok {
			break
		}
		idx := s.CurrentIndex
		fmt.Fprintf(out, "Question %d/%d:\n%s\n\n", idx+1, s.Total(), q.Question)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "%c) %s\n", letters[i], opt.Text)
		}
		fmt.Fprintln(out)

		if s.Answered[idx] {
			showOutcome(out, q, s.Selected[idx])
			s.Advance()
			continue
		}

		finished := false
	prompt:
		for {
			fmt.Fprint(out, "Your answer (A-D, h=hint, s=skip, b N=back, q=finish): ")
			if !scanner.Scan() {
				finished = true
				break
			}
			input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			switch {
			case input == "H":
				fmt.Fprintf(out, "💡 Hint: %s\n", q.Hint)
			case input == "S":
				s.Advance()
				break prompt
			case input == "Q":
				finished = true
				break prompt
			case strings.HasPrefix(input, "B "):
				n, err := strconv.Atoi(strings.TrimSpace(input[2:]))
				if err != nil || !s.JumpTo(n-1) {
					fmt.Fprintf(out, "You can only go back to questions 1-%d\n", s.Furthest+1)
					continue
				}
				break prompt
			case len(input) == 1 && strings.Contains(letters, input):
				outcome, ok := s.Answer(idx, strings.Index(letters, input))
				if !ok {
					continue
				}
				fmt.Fprintln(out)
				if outcome.Status == pdfquiz.AnswerCorrect {
					fmt.Fprintln(out, "✅ Correct!")
				} else {
					c := outcome.CorrectIndex
					fmt.Fprintf(out, "❌ Incorrect. The correct answer is %c) %s\n", letters[c], q.Options[c].Text)
				}
				showOutcome(out, q, outcome.Selected)
				fmt.Fprintf(out, "📊 Score: %d correct, %d wrong\n", s.Score, s.WrongCount)
				s.Advance()
				break prompt
			default:
				fmt.Fprintln(out, "Please enter A, B, C, or D")
			}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintln(out)
		if finished {
			break
		}
	}

	r := s.Finish()
	emoji, message := r.Rating()
	fmt.Fprintln(out, "🎉 Quiz completed!")
	fmt.Fprintf(out, "%s %s\n\n", emoji, message)
	fmt.Fprintln(out, r.Analysis())
}

// showOutcome prints every option's explanation, marking the chosen one
func showOutcome(out io.Writer, q pdfquiz.Question, selected int) {
	for i, opt := range q.Options {
		mark := "  "
		switch {
		case opt.Correct:
			mark = "✔ "
		case i == selected:
			mark = "✘ "
		}
		fmt.Fprintf(out, "%s%c) %s\n", mark, letters[i], opt.Explanation)
	}
}
