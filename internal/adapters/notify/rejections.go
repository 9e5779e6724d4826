package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// RejectionLog implementa ports.RejectionSink escribiendo una línea JSON por
// rechazo en un fichero append-only.
type RejectionLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

type rejectionEntry struct {
	Timestamp   string   `json:"timestamp"`
	Match       string   `json:"match"`
	Market      string   `json:"market"`
	Competition string   `json:"competition,omitempty"`
	Reason      string   `json:"reason"`
	Details     []string `json:"details,omitempty"`
}

// NewRejectionLog crea el directorio del fichero si no existe.
func NewRejectionLog(path string) (*RejectionLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("notify.NewRejectionLog: %w", err)
	}
	return &RejectionLog{path: path, now: time.Now}, nil
}

// Record implementa ports.RejectionSink.
func (l *RejectionLog) Record(_ context.Context, r domain.Rejection) error {
	at := r.At
	if at.IsZero() {
		at = l.now()
	}
	entry := rejectionEntry{
		Timestamp:   at.UTC().Format(time.RFC3339),
		Match:       r.Match,
		Market:      r.Market,
		Competition: r.Competition,
		Reason:      strings.Join(r.Reasons, "; "),
	}
	if len(r.Reasons) > 1 {
		entry.Details = r.Reasons
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("notify.RejectionLog: marshal: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("notify.RejectionLog: open: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("notify.RejectionLog: write: %w", err)
	}
	return nil
}
