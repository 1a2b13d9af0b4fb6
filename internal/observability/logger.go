package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeSupervisor EventType = "supervisor"
	EventTypeAgent      EventType = "agent"
	EventTypeCache      EventType = "cache"
	EventTypeStoreGap   EventType = "store_gap"
	EventTypeLLM        EventType = "llm"
	EventTypeRunFailed  EventType = "run_failed"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogSupervisor(runID, next string, retryAttempts int) {
	l.Log(Event{
		Type:  EventTypeSupervisor,
		RunID: runID,
		Data: map[string]any{
			"next":           next,
			"retry_attempts": retryAttempts,
		},
	})
}

func (l *Logger) LogAgent(runID, agent, status string) {
	l.Log(Event{
		Type:  EventTypeAgent,
		RunID: runID,
		Agent: agent,
		Data:  map[string]string{"status": status},
	})
}

func (l *Logger) LogCache(runID, agent, key string, hit bool) {
	l.Log(Event{
		Type:  EventTypeCache,
		RunID: runID,
		Agent: agent,
		Data: map[string]any{
			"key": key,
			"hit": hit,
		},
	})
}

func (l *Logger) LogStoreGap(runID, agent, detail string) {
	l.Log(Event{
		Type:  EventTypeStoreGap,
		RunID: runID,
		Agent: agent,
		Data:  map[string]string{"detail": detail},
	})
}

func (l *Logger) LogLLM(runID, agent string, prompt any, response string) {
	l.Log(Event{
		Type:  EventTypeLLM,
		RunID: runID,
		Agent: agent,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}

func (l *Logger) LogRunFailure(runID string, err error) {
	l.Log(Event{
		Type:  EventTypeRunFailed,
		RunID: runID,
		Data:  map[string]string{"error": err.Error()},
	})
}
