package flashtutor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunLogger writes the full transcript of one generation run (prompts,
// responses, validation outcomes) to its own file, so a bad deck can be
// traced back to what the model actually said. All methods are safe on a
// nil receiver, which is how logging is disabled.
type RunLogger struct {
	file  *os.File
	mu    sync.Mutex
	runID string
}

// NewRunLogger creates a log file for one generation run under dir.
func NewRunLogger(dir string, req GenerationRequest) (*RunLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runID := uuid.NewString()
	file, err := os.Create(filepath.Join(dir, runID+".log"))
	if err != nil {
		return nil, fmt.Errorf("failed to create run log: %w", err)
	}

	rl := &RunLogger{file: file, runID: runID}
	rl.logf("=== Flashcard Generation Run ===\n")
	rl.logf("Run ID: %s\n", runID)
	rl.logf("Source Material Length: %d characters\n", len(req.SourceText))
	rl.logf("Requested Cards: %d\n", req.Count)
	rl.logf("Style: %s\n", req.Style)
	rl.logf("Difficulty: %s\n", req.Difficulty)
	rl.logf("Started: %s\n", time.Now().Format(time.RFC3339))
	rl.logf("================================\n\n")
	return rl, nil
}

// RunID returns the identifier embedded in the log file name.
func (rl *RunLogger) RunID() string {
	if rl == nil {
		return ""
	}
	return rl.runID
}

func (rl *RunLogger) logf(format string, args ...interface{}) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(rl.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	rl.file.Sync()
}

// LogRequest records a prompt sent to the backend. stage is "generate" or
// "repair".
func (rl *RunLogger) LogRequest(stage, prompt string) {
	rl.logf("=== REQUEST (%s) ===\n%s\n====================\n\n", stage, prompt)
}

// LogResponse records the raw text the backend returned.
func (rl *RunLogger) LogResponse(stage, response string) {
	rl.logf("=== RESPONSE (%s) ===\n%s\n=====================\n\n", stage, response)
}

// LogError records a backend failure.
func (rl *RunLogger) LogError(stage string, err error) {
	rl.logf("=== ERROR (%s) ===\n%v\n==================\n\n", stage, err)
}

// Close finalizes and closes the log file.
func (rl *RunLogger) Close() error {
	if rl == nil {
		return nil
	}
	rl.logf("=== Run Complete ===\nFinished: %s\n====================\n", time.Now().Format(time.RFC3339))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.file != nil {
		return rl.file.Close()
	}
	return nil
}
