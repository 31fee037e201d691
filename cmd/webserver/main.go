package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"flashtutor"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// userSession is the server-side state behind one browser session: the
// current deck and the quiz walking it. Exactly one QuizSession is live per
// browser session.
type userSession struct {
	deck  flashtutor.Deck
	mode  string
	quiz  *flashtutor.QuizSession
	saved bool
}

type Server struct {
	cfg       flashtutor.Config
	store     *sessions.CookieStore
	templates map[string]*template.Template
	results   *flashtutor.ResultsDB

	mu       sync.Mutex
	sessions map[string]*userSession
}

func main() {
	var (
		addr      = flag.String("addr", ":8080", "Listen address")
		resultsDB = flag.String("results-db", "./flashtutor.db", "SQLite file for quiz score history")
		verbose   = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()
	flashtutor.SetVerbose(*verbose)

	cfg, err := flashtutor.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	results, err := flashtutor.OpenResultsDB(*resultsDB)
	if err != nil {
		log.Fatalf("Failed to open results database: %v", err)
	}
	defer results.Close()

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate session key: %v", err)
	}

	server := &Server{
		cfg:       cfg,
		store:     sessions.NewCookieStore(key),
		templates: loadTemplates(),
		results:   results,
		sessions:  make(map[string]*userSession),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleHome)
	mux.HandleFunc("POST /generate", server.handleGenerate)
	mux.HandleFunc("GET /quiz", server.handleQuiz)
	mux.HandleFunc("POST /quiz/start", server.handleQuizStart)
	mux.HandleFunc("POST /quiz/reveal", server.handleQuizOp(func(q *flashtutor.QuizSession) error {
		_, err := q.Reveal()
		return err
	}))
	mux.HandleFunc("POST /quiz/mark", server.handleQuizMark)
	mux.HandleFunc("POST /quiz/next", server.handleQuizOp((*flashtutor.QuizSession).Next))
	mux.HandleFunc("GET /results", server.handleResults)

	log.Printf("Flashcard tutor listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

// session returns the server-side state for the requesting browser, creating
// it (and the sid cookie) on first contact.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *userSession {
	cookie, _ := s.store.Get(r, "flashtutor-session")
	sid, ok := cookie.Values["sid"].(string)
	if !ok || sid == "" {
		sid = uuid.NewString()
		cookie.Values["sid"] = sid
		if err := cookie.Save(r, w); err != nil {
			log.Printf("Failed to save session cookie: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	us, ok := s.sessions[sid]
	if !ok {
		us = &userSession{quiz: flashtutor.NewQuizSession()}
		s.sessions[sid] = us
	}
	return us
}

type pageData struct {
	Error      string
	Status     string
	Deck       flashtutor.Deck
	Mode       string
	Snapshot   flashtutor.QuizSnapshot
	HasDeck    bool
	Results    []flashtutor.ResultSummary
	Config     flashtutor.Config
	Styles     []flashtutor.Style
	Difficulty []flashtutor.Difficulty
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	data.Styles = []flashtutor.Style{flashtutor.StyleQA, flashtutor.StyleDefinition, flashtutor.StyleCloze}
	data.Difficulty = []flashtutor.Difficulty{flashtutor.DifficultyEasy, flashtutor.DifficultyMedium, flashtutor.DifficultyHard}
	data.Config = s.cfg
	if err := s.templates[name].ExecuteTemplate(w, "base", data); err != nil {
		log.Printf("Template error (%s): %v", name, err)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	us := s.session(w, r)
	s.render(w, "home", pageData{
		Deck:    us.deck,
		Mode:    us.mode,
		HasDeck: len(us.deck) > 0,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	us := s.session(w, r)

	source := r.FormValue("source")
	if len(strings.TrimSpace(source)) < flashtutor.MinSourceChars {
		s.render(w, "home", pageData{
			Error: fmt.Sprintf("Please paste at least %d characters of study material (a few paragraphs).",
				flashtutor.MinSourceChars),
			Deck: us.deck, HasDeck: len(us.deck) > 0,
		})
		return
	}

	count, err := strconv.Atoi(r.FormValue("count"))
	if err != nil || count < 1 {
		count = s.cfg.CardCount
	}
	style, err := flashtutor.ParseStyle(r.FormValue("style"))
	if err != nil {
		style = s.cfg.Style
	}
	difficulty, err := flashtutor.ParseDifficulty(r.FormValue("difficulty"))
	if err != nil {
		difficulty = s.cfg.Difficulty
	}
	useLLM := r.FormValue("use_llm") == "on" && s.cfg.APIKey != ""

	var backend flashtutor.GenerativeBackend
	if useLLM {
		backend = flashtutor.NewOpenAIBackend(s.cfg.APIKey, s.cfg.BackendModel, s.cfg.BackendTimeout())
	}

	req := flashtutor.GenerationRequest{
		SourceText: source,
		Count:      count,
		Style:      style,
		Difficulty: difficulty,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	deck, mode, _, err := flashtutor.NewGenerator(backend, nil).Generate(ctx, req)
	short := errors.Is(err, flashtutor.ErrDeckShort)
	if err != nil && !short {
		msg := err.Error()
		var backendErr *flashtutor.BackendError
		if errors.As(err, &backendErr) {
			msg = backendErr.UserMessage()
		}
		s.render(w, "home", pageData{Error: msg, Deck: us.deck, HasDeck: len(us.deck) > 0})
		return
	}

	us.deck = deck
	us.mode = mode
	us.quiz = flashtutor.NewQuizSession()
	us.saved = false

	status := fmt.Sprintf("Generated %d flashcards (mode: %s). Head to the quiz to practice!", len(deck), mode)
	if short {
		status = fmt.Sprintf("Generated only %d of %d requested cards (mode: %s). You can still quiz yourself on them.",
			len(deck), count, mode)
	}
	s.render(w, "home", pageData{Status: status, Deck: deck, Mode: mode, HasDeck: true})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	us := s.session(w, r)
	s.render(w, "quiz", pageData{
		Snapshot: us.quiz.Snapshot(),
		HasDeck:  len(us.deck) > 0,
	})
}

func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	us := s.session(w, r)
	us.saved = false
	if err := us.quiz.Start(us.deck); err != nil {
		s.render(w, "quiz", pageData{Error: "No flashcards yet. Generate a deck first.", HasDeck: false})
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

// handleQuizOp wraps a single state-machine transition. State errors are
// rendered, never fatal: an out-of-sequence button press must not kill the
// session.
func (s *Server) handleQuizOp(op func(*flashtutor.QuizSession) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		us := s.session(w, r)
		if err := op(us.quiz); err != nil {
			s.render(w, "quiz", pageData{
				Error:    err.Error(),
				Snapshot: us.quiz.Snapshot(),
				HasDeck:  len(us.deck) > 0,
			})
			return
		}
		s.maybeSaveResult(us)
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
	}
}

func (s *Server) handleQuizMark(w http.ResponseWriter, r *http.Request) {
	correct := r.FormValue("correct") == "1"
	s.handleQuizOp(func(q *flashtutor.QuizSession) error {
		return q.Mark(correct)
	})(w, r)
}

// maybeSaveResult persists a just-finished session exactly once.
func (s *Server) maybeSaveResult(us *userSession) {
	snap := us.quiz.Snapshot()
	if !snap.Finished || us.saved || len(us.deck) == 0 {
		return
	}
	style := us.deck[0].Style
	difficulty := us.deck[0].Difficulty
	if _, err := s.results.SaveSession(us.quiz, us.mode, style, difficulty); err != nil {
		log.Printf("Failed to save quiz result: %v", err)
		return
	}
	us.saved = true
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.results.ListResults(50)
	if err != nil {
		s.render(w, "results", pageData{Error: "Could not load quiz history."})
		return
	}
	s.render(w, "results", pageData{Results: results})
}
