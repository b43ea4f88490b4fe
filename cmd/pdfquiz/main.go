package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"pdfquiz"

	"golang.org/x/crypto/bcrypt"
)

const usage = `usage: pdfquiz <command> [flags]

commands:
  generate       generate a quiz from a PDF
  import         import questions from a JSON file
  list           list stored quizzes
  activate       make a quiz active
  shuffle        turn option shuffling on or off for a quiz
  delete         delete a quiz
  export         export a quiz as JSON or PDF
  play           take a quiz in the terminal
  clear          delete all quiz data
  hash-password  print a bcrypt hash for ADMIN_PASS_HASH
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := pdfquiz.ConfigFromEnv()
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "generate":
		err = runGenerate(cfg, args)
	case "import":
		err = runImport(cfg, args)
	case "list":
		err = runList(cfg, args)
	case "activate":
		err = runActivate(cfg, args)
	case "shuffle":
		err = runShuffle(cfg, args)
	case "delete":
		err = runDelete(cfg, args)
	case "export":
		err = runExport(cfg, args)
	case "play":
		err = runPlay(cfg, args, os.Stdin, os.Stdout)
	case "clear":
		err = runClear(cfg, args)
	case "hash-password":
		err = runHashPassword(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

// storeFlags registers the flags every store-backed command shares
func storeFlags(fs *flag.FlagSet, cfg *pdfquiz.Config) {
	fs.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "Store driver (sqlite, postgres, redis, memory)")
	fs.StringVar(&cfg.StoreDSN, "dsn", cfg.StoreDSN, "Store DSN (sqlite file path or postgres URL)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose debugging output")
}

func openService(ctx context.Context, cfg pdfquiz.Config, withAI bool) (*pdfquiz.Service, error) {
	pdfquiz.SetVerbose(cfg.Verbose)
	kv, err := pdfquiz.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var ai pdfquiz.Collaborator
	if withAI {
		ai, err = pdfquiz.NewCollaborator(ctx, cfg)
		if err != nil {
			kv.Close()
			return nil, err
		}
	}
	return pdfquiz.NewService(kv, ai, cfg), nil
}

func runGenerate(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	pdfPath := fs.String("pdf", "", "PDF file to generate questions from (required)")
	numQuestions := fs.Int("questions", cfg.DefaultQuestions, "Number of questions to generate")
	shuffle := fs.Bool("shuffle", false, "Shuffle options each time the quiz is launched")
	fs.StringVar(&cfg.AIProvider, "provider", cfg.AIProvider, "AI provider (gemini, openai)")
	fs.StringVar(&cfg.AIModel, "model", cfg.AIModel, "Model name (provider default when empty)")
	apiKey := fs.String("api-key", "", "API key (or set GEMINI_API_KEY / OPENAI_API_KEY)")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	if *pdfPath == "" {
		return errors.New("a PDF is required, use -pdf")
	}
	if *apiKey != "" {
		cfg.GeminiAPIKey, cfg.OpenAIAPIKey = *apiKey, *apiKey
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	svc, err := openService(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	item, result, err := svc.GenerateFromPDF(ctx, *pdfPath, "", *numQuestions, *shuffle)
	if err != nil {
		var short *pdfquiz.InsufficientQuestionsError
		if errors.As(err, &short) {
			return fmt.Errorf("could not reach %d questions, short by %d; nothing was saved", short.Requested, short.Shortfall())
		}
		return err
	}
	for _, w := range result.Warnings {
		fmt.Printf("⚠️  %s\n", w.Message())
	}
	fmt.Printf("🎉 %s saved with %d questions (id %s)\n", item.Title, len(item.Questions), item.ID)
	return nil
}

func runImport(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "JSON file with questions (required, - for stdin)")
	name := fs.String("name", "Manual", "Base name for the quiz title")
	shuffle := fs.Bool("shuffle", false, "Shuffle options each time the quiz is launched")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	var data []byte
	var err error
	switch *file {
	case "":
		return errors.New("a file is required, use -file")
	case "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("failed to read questions: %w", err)
	}

	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	item, err := svc.ImportManual(ctx, *name, string(data), *shuffle)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Success! %d question(s) saved as %s (id %s)\n", len(item.Questions), item.Title, item.ID)
	return nil
}

func runList(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	storeFlags(fs, &cfg)
	fs.Parse(args)

	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	c := svc.Store.Load(ctx)
	if len(c.Items) == 0 {
		fmt.Println("No quizzes yet. Generate one with: pdfquiz generate -pdf <file>")
		return nil
	}
	for _, item := range c.Items {
		marker := " "
		if item.ID == c.ActiveQuizID {
			marker = "*"
		}
		shuffle := ""
		if item.ShuffleOptions {
			shuffle = " [shuffle]"
		}
		fmt.Printf("%s %s  %-30s %2d questions  %s%s\n", marker, item.ID, item.Title, len(item.Questions),
			item.CreatedAt.Format("2006-01-02 15:04"), shuffle)
	}
	return nil
}

func runActivate(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("activate", flag.ExitOnError)
	id := fs.String("id", "", "Quiz id (required)")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()
	return svc.Store.SetActive(ctx, *id)
}

func runShuffle(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("shuffle", flag.ExitOnError)
	id := fs.String("id", "", "Quiz id (required)")
	on := fs.Bool("on", true, "Enable (true) or disable (false) option shuffling")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()
	return svc.Store.SetShuffle(ctx, *id, *on)
}

func runDelete(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Quiz id (required)")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()
	if err := svc.Store.DeleteItem(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Deleted quiz %s\n", *id)
	return nil
}

func runExport(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	id := fs.String("id", "", "Quiz id (default: active quiz)")
	format := fs.String("format", "json", "Output format (json, pdf)")
	answers := fs.Bool("answers", true, "Include an answer key in PDF output")
	outputFile := fs.String("output", "", "Output file (default: stdout)")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	item, err := resolveItem(ctx, svc.Store, *id)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch *format {
	case "json":
		text, err := pdfquiz.ExportJSON(*item)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
	case "pdf":
		if err := pdfquiz.ExportPDF(out, *item, *answers); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if *outputFile != "" {
		log.Printf("Quiz saved to: %s", *outputFile)
	}
	return nil
}

func runClear(cfg pdfquiz.Config, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Confirm deleting all quiz data")
	storeFlags(fs, &cfg)
	fs.Parse(args)

	if !*yes {
		return errors.New("this deletes all quiz data and cannot be undone; pass -yes to confirm")
	}
	ctx := context.Background()
	svc, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()
	if err := svc.Store.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("✅ All quiz data has been cleared.")
	return nil
}

func runHashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	password := fs.String("password", "", "Password to hash (default: read a line from stdin)")
	fs.Parse(args)

	pw := *password
	if pw == "" {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			pw = strings.TrimSpace(scanner.Text())
		}
	}
	if pw == "" {
		return errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}

// resolveItem returns the quiz with id, or the active quiz when id is empty
func resolveItem(ctx context.Context, store *pdfquiz.CollectionStore, id string) (*pdfquiz.QuizItem, error) {
	if id != "" {
		return store.Get(ctx, id)
	}
	if item := store.GetActive(ctx); item != nil {
		return item, nil
	}
	return nil, errors.New("no active quiz, pass -id")
}
