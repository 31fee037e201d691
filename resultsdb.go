package flashtutor

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ResultsDB records completed quiz sessions so a student can track progress
// over time. Only scores and per-card outcomes are stored; decks themselves
// are never persisted across process lifetimes.
type ResultsDB struct {
	db *sql.DB
}

// ResultSummary is one completed quiz session.
type ResultSummary struct {
	ID         string     `json:"id"`
	TakenAt    time.Time  `json:"taken_at"`
	Mode       string     `json:"mode"`
	Style      Style      `json:"style"`
	Difficulty Difficulty `json:"difficulty"`
	CardCount  int        `json:"card_count"`
	Correct    int        `json:"correct"`
	Incorrect  int        `json:"incorrect"`
	Accuracy   float64    `json:"accuracy"`
}

// OpenResultsDB opens (or creates) the score-history database at path.
func OpenResultsDB(path string) (*ResultsDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}

	rdb := &ResultsDB{db: db}
	if err := rdb.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return rdb, nil
}

// Close closes the underlying connection.
func (r *ResultsDB) Close() error {
	return r.db.Close()
}

func (r *ResultsDB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quiz_results (
			id TEXT PRIMARY KEY,
			taken_at DATETIME NOT NULL,
			mode TEXT NOT NULL,
			style TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			card_count INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			accuracy REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS card_results (
			result_id TEXT NOT NULL,
			card_num INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL,
			PRIMARY KEY (result_id, card_num),
			FOREIGN KEY (result_id) REFERENCES quiz_results(id)
		)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create results tables: %w", err)
		}
	}
	return nil
}

// SaveSession stores a finished session's summary and per-card history in
// one transaction, returning the generated result ID.
func (r *ResultsDB) SaveSession(session *QuizSession, mode string, style Style, difficulty Difficulty) (string, error) {
	snap := session.Snapshot()
	history := session.History()

	summary := ResultSummary{
		ID:         uuid.NewString(),
		TakenAt:    time.Now(),
		Mode:       mode,
		Style:      style,
		Difficulty: difficulty,
		CardCount:  snap.Total,
		Correct:    snap.Correct,
		Incorrect:  snap.Incorrect,
		Accuracy:   snap.Accuracy,
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO quiz_results (id, taken_at, mode, style, difficulty, card_count, correct, incorrect, accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.TakenAt, summary.Mode, string(summary.Style), string(summary.Difficulty),
		summary.CardCount, summary.Correct, summary.Incorrect, summary.Accuracy,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save quiz result: %w", err)
	}

	for i, card := range history {
		_, err = tx.Exec(
			`INSERT INTO card_results (result_id, card_num, question, answer, correct) VALUES (?, ?, ?, ?, ?)`,
			summary.ID, i+1, card.Question, card.Answer, card.Correct,
		)
		if err != nil {
			return "", fmt.Errorf("failed to save card result %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit quiz result: %w", err)
	}
	return summary.ID, nil
}

// ListResults returns the most recent result summaries, newest first.
func (r *ResultsDB) ListResults(limit int) ([]ResultSummary, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, taken_at, mode, style, difficulty, card_count, correct, incorrect, accuracy
		 FROM quiz_results ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}
	defer rows.Close()

	var results []ResultSummary
	for rows.Next() {
		var s ResultSummary
		var style, difficulty string
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.Mode, &style, &difficulty,
			&s.CardCount, &s.Correct, &s.Incorrect, &s.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		s.Style = Style(style)
		s.Difficulty = Difficulty(difficulty)
		results = append(results, s)
	}
	return results, rows.Err()
}

// GetCardResults returns the per-card history of one stored session.
func (r *ResultsDB) GetCardResults(resultID string) ([]CardResult, error) {
	rows, err := r.db.Query(
		`SELECT question, answer, correct FROM card_results WHERE result_id = ? ORDER BY card_num`, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card results: %w", err)
	}
	defer rows.Close()

	var cards []CardResult
	for rows.Next() {
		var c CardResult
		if err := rows.Scan(&c.Question, &c.Answer, &c.Correct); err != nil {
			return nil, fmt.Errorf("failed to scan card result: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
