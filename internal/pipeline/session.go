// Package pipeline holds the per-session state machine that turns uploads into
// derived tables and subject selections into aggregates.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/markboard-cli/internal/analysis"
	"github.com/KaramelBytes/markboard-cli/internal/grades"
	"github.com/KaramelBytes/markboard-cli/internal/parser"
)

// State is the session lifecycle position.
type State int

const (
	// Empty means no table is loaded.
	Empty State = iota
	// Loaded means a validated, derived table is held but no subject is selected.
	Loaded
	// Ready means a subject is selected and its aggregate is computed.
	Ready
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Ready:
		return "ready"
	default:
		return "empty"
	}
}

// MarshalText renders the state name in JSON/YAML output.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// StatusKind classifies the outcome of the last upload.
type StatusKind string

const (
	StatusNone   StatusKind = ""
	StatusOK     StatusKind = "ok"
	StatusSchema StatusKind = "schema_error"
	StatusError  StatusKind = "error"
)

// Status is the user-facing outcome of an upload.
type Status struct {
	Kind     StatusKind `json:"kind" yaml:"kind"`
	Message  string     `json:"message" yaml:"message"`
	Filename string     `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// OK reports whether the upload succeeded.
func (s Status) OK() bool { return s.Kind == StatusOK }

// StatusFor converts a load error into the message shown to the user.
func StatusFor(filename string, err error) Status {
	switch {
	case err == nil:
		return Status{Kind: StatusOK, Message: fmt.Sprintf("Uploaded: %s", filename), Filename: filename}
	case errors.Is(err, grades.ErrSchema):
		return Status{Kind: StatusSchema, Message: "Missing required columns", Filename: filename}
	default:
		return Status{Kind: StatusError, Message: fmt.Sprintf("Error: %v", err), Filename: filename}
	}
}

// Upload is one file handed over by the presentation layer, already decoded
// from any transport encoding.
type Upload struct {
	Filename string
	Format   parser.Format
	Data     []byte
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	ID       string                   `json:"id" yaml:"id"`
	State    State                    `json:"state" yaml:"state"`
	Status   Status                   `json:"status" yaml:"status"`
	Filename string                   `json:"filename,omitempty" yaml:"filename,omitempty"`
	LoadedAt *time.Time               `json:"loaded_at,omitempty" yaml:"loaded_at,omitempty"`
	Records  int                      `json:"records" yaml:"records"`
	Subjects []string                 `json:"subjects" yaml:"subjects"`
	Subject  string                   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Result   analysis.AggregateResult `json:"result" yaml:"result"`
}

// Session owns one loaded table and the current subject selection. Methods
// are serialized, so each event completes before the next one starts.
type Session struct {
	mu     sync.Mutex
	id     uuid.UUID
	opt    grades.Options
	popt   parser.Options
	logger *slog.Logger

	state    State
	status   Status
	filename string
	loadedAt time.Time
	table    *grades.Table
	subjects []string
	subject  string
	result   analysis.AggregateResult
}

// New creates an empty session.
func New(opt grades.Options, popt parser.Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	s := &Session{
		id:     id,
		opt:    opt,
		popt:   popt,
		logger: logger.With(slog.String("component", "session"), slog.String("session_id", id.String())),
	}
	s.resetLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id.String() }

// Load replaces whatever the session holds with the table parsed from u.
// On failure the session stays Empty and the returned status names the cause.
func (s *Session) Load(u Upload) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(u)
}

// Replace is Load returning the resulting snapshot, taken under the same lock
// so no other event can land in between.
func (s *Session) Replace(u Upload) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(u)
	return s.snapshotLocked()
}

// Fail records an upload that never reached parsing, such as an undecodable
// payload. The previous table is discarded like any other upload.
func (s *Session) Fail(filename string, err error) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.status = StatusFor(filename, err)
	s.logger.Warn("upload rejected",
		slog.String("file", filename),
		slog.String("status", string(s.status.Kind)),
		slog.String("error", err.Error()))
	return s.snapshotLocked()
}

func (s *Session) loadLocked(u Upload) Status {
	s.resetLocked()
	start := time.Now()
	t, err := Ingest(u, s.popt, s.opt)
	s.status = StatusFor(u.Filename, err)
	if err != nil {
		s.logger.Warn("upload rejected",
			slog.String("file", u.Filename),
			slog.String("status", string(s.status.Kind)),
			slog.String("error", err.Error()))
		return s.status
	}
	s.state = Loaded
	s.filename = u.Filename
	s.loadedAt = time.Now()
	s.table = t
	s.subjects = analysis.Subjects(t)
	s.logger.Info("upload loaded",
		slog.String("file", u.Filename),
		slog.Int("records", t.Len()),
		slog.Int("subjects", len(s.subjects)),
		slog.Duration("took", time.Since(start)))
	return s.status
}

// Select sets the subject filter and recomputes the aggregate. With no table
// loaded or an empty subject it returns the placeholder result.
func (s *Session) Select(subject string) analysis.AggregateResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Empty {
		return analysis.Empty()
	}
	if subject == "" {
		s.state = Loaded
		s.subject = ""
		s.result = analysis.Empty()
		return s.result.Clone()
	}
	s.subject = subject
	s.result = analysis.Aggregate(s.table, subject)
	s.state = Ready
	s.logger.Debug("subject selected",
		slog.String("subject", subject),
		slog.Int("total", s.result.Total))
	return s.result.Clone()
}

// Reset discards the loaded table and selection.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = Empty
	s.status = Status{}
	s.filename = ""
	s.loadedAt = time.Time{}
	s.table = nil
	s.subjects = []string{}
	s.subject = ""
	s.result = analysis.Empty()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the session state safe to hand to readers.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:       s.ID(),
		State:    s.state,
		Status:   s.status,
		Filename: s.filename,
		Records:  s.table.Len(),
		Subjects: append([]string{}, s.subjects...),
		Subject:  s.subject,
		Result:   s.result.Clone(),
	}
	if !s.loadedAt.IsZero() {
		at := s.loadedAt
		snap.LoadedAt = &at
	}
	return snap
}

// Report builds a rendered summary of the current selection.
func (s *Session) Report(sampleRows int) *analysis.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analysis.NewReport(s.filename, s.opt.Course, s.table, s.subject, sampleRows)
}

// Ingest runs parse, normalize, validate, course filter and derivation.
func Ingest(u Upload, popt parser.Options, opt grades.Options) (*grades.Table, error) {
	sh, err := parser.Parse(u.Filename, u.Format, u.Data, popt)
	if err != nil {
		return nil, err
	}
	t, err := grades.BuildTable(sh, opt)
	if err != nil {
		return nil, err
	}
	return grades.Derive(t, opt)
}
