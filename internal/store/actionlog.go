package store

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ActionRecord is one line of the action log: what the organizer did and
// when.
type ActionRecord struct {
	Time    time.Time      `json:"time"`
	Action  string         `json:"action"`
	Details map[string]any `json:"details,omitempty"`
}

// ActionLog appends JSONL records asynchronously. Writes never block the
// caller; under backpressure records are dropped with a warning.
type ActionLog struct {
	writeCh chan ActionRecord
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *lumberjack.Logger
	mu      sync.Mutex
}

// NewActionLog opens (or creates) actions.jsonl inside dir, rotating at
// maxSizeMB.
func NewActionLog(dir string, bufferSize, maxSizeMB int) *ActionLog {
	l := &ActionLog{
		writeCh: make(chan ActionRecord, bufferSize),
		done:    make(chan struct{}),
		logger: &lumberjack.Logger{
			Filename:   filepath.Join(dir, "actions.jsonl"),
			MaxSize:    maxSizeMB,
			MaxBackups: 5,
			MaxAge:     30,
			LocalTime:  false,
		},
	}
	l.wg.Add(1)
	go l.writeLoop()
	return l
}

// Record queues one action for writing.
func (l *ActionLog) Record(action string, details map[string]any) {
	rec := ActionRecord{Time: time.Now().UTC(), Action: action, Details: details}
	select {
	case l.writeCh <- rec:
	case <-l.done:
	default:
		slog.Warn("action log buffer full, dropping record", "action", action)
	}
}

// Close stops the writer and flushes what it can.
func (l *ActionLog) Close() error {
	close(l.done)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case rec := <-l.writeCh:
			l.writeRecord(rec)
		case <-timeout:
			slog.Warn("action log close timeout, some records may be lost")
			goto done
		default:
			goto done
		}
	}

done:
	l.wg.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logger.Close()
}

func (l *ActionLog) writeLoop() {
	defer l.wg.Done()
	for {
		select {
		case rec := <-l.writeCh:
			l.writeRecord(rec)
		case <-l.done:
			return
		}
	}
}

func (l *ActionLog) writeRecord(rec ActionRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		slog.Error("failed to marshal action record", "error", err)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.logger.Write(append(data, '\n')); err != nil {
		slog.Error("failed to write action record", "error", err)
	}
}
