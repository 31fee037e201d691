package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"flashtutor"
)

func main() {
	var (
		file       = flag.String("file", "", "Path to study material text (default: read stdin)")
		count      = flag.Int("count", 0, "Number of flashcards to generate (default from env, 10)")
		styleFlag  = flag.String("style", "", "Card style: qa, definition, cloze")
		diffFlag   = flag.String("difficulty", "", "Difficulty: easy, medium, hard")
		offline    = flag.Bool("offline", false, "Use the deterministic offline generator, never the LLM")
		apiKey     = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY)")
		model      = flag.String("model", "", "Backend model (or set OPENAI_MODEL)")
		timeoutSec = flag.Int("timeout", 0, "Per-call backend timeout in seconds")
		outputFile = flag.String("output", "", "Write the deck as JSON to this file instead of a table")
		playMode   = flag.Bool("play", false, "Quiz yourself on the generated deck")
		logDir     = flag.String("log-dir", "", "Directory for per-run LLM transcripts (empty: disabled)")
		resultsDB  = flag.String("results-db", "", "SQLite file for quiz score history (empty: not saved)")
		history    = flag.Bool("history", false, "Print stored quiz results and exit (requires -results-db)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()
	flashtutor.SetVerbose(*verbose)

	cfg, err := flashtutor.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
		cfg.UseLLM = true
	}
	if *model != "" {
		cfg.BackendModel = *model
	}
	if *timeoutSec > 0 {
		cfg.BackendTimeoutSeconds = *timeoutSec
	}
	if *count > 0 {
		cfg.CardCount = *count
	}
	if *styleFlag != "" {
		style, err := flashtutor.ParseStyle(*styleFlag)
		if err != nil {
			log.Fatalf("Invalid style: %v", err)
		}
		cfg.Style = style
	}
	if *diffFlag != "" {
		difficulty, err := flashtutor.ParseDifficulty(*diffFlag)
		if err != nil {
			log.Fatalf("Invalid difficulty: %v", err)
		}
		cfg.Difficulty = difficulty
	}
	if *offline {
		cfg.UseLLM = false
	}

	if *history {
		if *resultsDB == "" {
			log.Fatal("-history requires -results-db")
		}
		printHistory(*resultsDB)
		return
	}

	source, err := readSource(*file)
	if err != nil {
		log.Fatalf("Failed to read study material: %v", err)
	}
	if len(strings.TrimSpace(source)) < flashtutor.MinSourceChars {
		log.Fatalf("Study material is too short: paste at least %d characters (a few paragraphs).",
			flashtutor.MinSourceChars)
	}

	req := flashtutor.GenerationRequest{
		SourceText: source,
		Count:      cfg.CardCount,
		Style:      cfg.Style,
		Difficulty: cfg.Difficulty,
	}

	var backend flashtutor.GenerativeBackend
	var runLogger *flashtutor.RunLogger
	if cfg.UseLLM {
		if cfg.APIKey == "" {
			log.Fatal("OpenAI API key is required for LLM generation. Use -api-key, set OPENAI_API_KEY, or pass -offline.")
		}
		backend = flashtutor.NewOpenAIBackend(cfg.APIKey, cfg.BackendModel, cfg.BackendTimeout())
		if *logDir != "" {
			runLogger, err = flashtutor.NewRunLogger(*logDir, req)
			if err != nil {
				log.Printf("Run logging disabled: %v", err)
			} else {
				defer runLogger.Close()
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	generator := flashtutor.NewGenerator(backend, runLogger)
	deck, mode, _, err := generator.Generate(ctx, req)
	if err != nil && !errors.Is(err, flashtutor.ErrDeckShort) {
		var backendErr *flashtutor.BackendError
		if errors.As(err, &backendErr) {
			log.Fatalf("Generation failed: %s (%v)", backendErr.UserMessage(), backendErr)
		}
		log.Fatalf("Generation failed: %v", err)
	}
	if errors.Is(err, flashtutor.ErrDeckShort) {
		fmt.Printf("⚠️  Only %d of %d requested cards could be generated.\n\n", len(deck), cfg.CardCount)
	}

	fmt.Printf("📚 Generated %d flashcards (mode: %s, style: %s, difficulty: %s)\n\n",
		len(deck), mode, cfg.Style, cfg.Difficulty)

	if *outputFile != "" {
		out, err := json.MarshalIndent(deck, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal deck: %v", err)
		}
		if err := os.WriteFile(*outputFile, out, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Deck saved to: %s", *outputFile)
	} else {
		printDeck(deck)
	}

	if *playMode {
		playQuiz(deck, mode, cfg, *resultsDB)
	}
}

func readSource(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func printDeck(deck flashtutor.Deck) {
	for i, card := range deck {
		fmt.Printf("%2d. [%s/%s]\n", i+1, card.Style, card.Difficulty)
		fmt.Printf("    Q: %s\n", card.Question)
		fmt.Printf("    A: %s\n\n", card.Answer)
	}
}

// playQuiz runs the reveal/mark/next loop over stdin.
func playQuiz(deck flashtutor.Deck, mode string, cfg flashtutor.Config, resultsDBPath string) {
	session := flashtutor.NewQuizSession()
	if err := session.Start(deck); err != nil {
		log.Fatalf("Cannot start quiz: %v", err)
	}

	fmt.Println("🎯 Quiz time! Press Enter to reveal each answer, then tell me how you did.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		snap := session.Snapshot()
		if snap.Finished {
			break
		}

		fmt.Printf("Question %d/%d:\n%s\n", snap.Position+1, snap.Total, snap.Question)
		fmt.Print("\n[Enter to reveal] ")
		scanner.Scan()

		answer, err := session.Reveal()
		if err != nil {
			log.Fatalf("Quiz state error: %v", err)
		}
		fmt.Printf("💡 Answer: %s\n", answer)

		var correct bool
		for {
			fmt.Print("Did you get it right? (y/n): ")
			scanner.Scan()
			input := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if input == "y" || input == "yes" {
				correct = true
				break
			}
			if input == "n" || input == "no" {
				break
			}
			fmt.Println("Please answer y or n")
		}

		if err := session.Mark(correct); err != nil {
			log.Fatalf("Quiz state error: %v", err)
		}
		if err := session.Next(); err != nil {
			log.Fatalf("Quiz state error: %v", err)
		}
		fmt.Println()
		fmt.Println(strings.Repeat("─", 50))
		fmt.Println()
	}

	final := session.Snapshot()
	fmt.Println("🎉 Quiz completed!")
	fmt.Printf("✅ Correct: %d   ❌ Incorrect: %d   🎯 Accuracy: %.1f%%\n",
		final.Correct, final.Incorrect, final.Accuracy*100)

	switch {
	case final.Accuracy >= 0.8:
		fmt.Println("🌟 Excellent work!")
	case final.Accuracy >= 0.6:
		fmt.Println("👍 Good job!")
	default:
		fmt.Println("📚 Keep studying!")
	}

	if resultsDBPath != "" {
		db, err := flashtutor.OpenResultsDB(resultsDBPath)
		if err != nil {
			log.Printf("Could not open results database: %v", err)
			return
		}
		defer db.Close()

		id, err := db.SaveSession(session, mode, cfg.Style, cfg.Difficulty)
		if err != nil {
			log.Printf("Could not save quiz result: %v", err)
			return
		}
		fmt.Printf("💾 Result saved (%s)\n", id)
	}
}

func printHistory(path string) {
	db, err := flashtutor.OpenResultsDB(path)
	if err != nil {
		log.Fatalf("Could not open results database: %v", err)
	}
	defer db.Close()

	results, err := db.ListResults(20)
	if err != nil {
		log.Fatalf("Could not list quiz results: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("No stored quiz results yet.")
		return
	}

	fmt.Println("📊 Recent quiz results:")
	for _, r := range results {
		fmt.Printf("  %s  %-8s %-10s %-6s  %d/%d correct (%.1f%%)\n",
			r.TakenAt.Format("2006-01-02 15:04"), r.Mode, r.Style, r.Difficulty,
			r.Correct, r.CardCount, r.Accuracy*100)
	}
}
