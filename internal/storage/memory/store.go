package memory

import (
	"image"
	"sort"
	"sync"
	"time"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

// Transition describes the active-screen change caused by a navigation.
type Transition struct {
	// From is the previously active screen ("" at session start).
	From string `json:"from"`

	// To is the newly active screen.
	To string `json:"to"`

	// Created reports whether the navigation created the screen's record.
	Created bool `json:"created"`

	// NeedsSnapshot reports whether the screen still lacks a snapshot and
	// the caller should request one.
	NeedsSnapshot bool `json:"needs_snapshot"`
}

// Drained is the result of DrainAll.
type Drained struct {
	// Records holds every record with an attached snapshot, ordered by
	// first navigation.
	Records []*domain.Record

	// Incomplete lists screens that never received a snapshot. They
	// cannot be rendered and are left out of Records.
	Incomplete []string
}

// Stats summarizes store contents.
type Stats struct {
	Screens   int    `json:"screens"`
	Samples   int    `json:"samples"`
	Snapshots int    `json:"snapshots"`
	Active    string `json:"active,omitempty"`
}

// Store holds the per-screen tracking state of one session.
type Store struct {
	mu      sync.Mutex
	records map[string]*domain.Record
	active  string
	now     func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]*domain.Record),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddSample appends sample to the screen's record. Samples for a screen
// with no record are discarded and AddSample returns false.
func (s *Store) AddSample(screenID string, sample domain.TouchSample) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[screenID]
	if !ok {
		return false
	}
	rec.Samples = append(rec.Samples, sample)
	return true
}

// RecordNavigation makes screenID the active screen.
//
// The first navigation into a screen creates its record. Every navigation
// counts one entry from the previously active screen in the record's
// provenance, or marks the session start when no screen was active.
func (s *Store) RecordNavigation(screenID string) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	tr := Transition{From: s.active, To: screenID}

	rec, ok := s.records[screenID]
	if !ok {
		rec = domain.NewRecord(screenID)
		rec.FirstSeen = now
		s.records[screenID] = rec
		tr.Created = true
	}

	rec.Provenance.AddFrom(s.active)
	rec.LastSeen = now
	s.active = screenID

	tr.NeedsSnapshot = !rec.HasSnapshot()
	return tr
}

// AttachSnapshot sets the screen's snapshot if none is set yet. It returns
// false when the screen is untracked or already has a snapshot; the first
// successful attach always wins.
func (s *Store) AttachSnapshot(screenID string, img image.Image) bool {
	if img == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[screenID]
	if !ok || rec.HasSnapshot() {
		return false
	}
	rec.Snapshot = img
	return true
}

// DrainAll returns copies of all records ready for rendering. When reset
// is true the store is emptied and no screen remains active.
func (s *Store) DrainAll(reset bool) Drained {
	s.mu.Lock()
	records := s.records
	if reset {
		s.records = make(map[string]*domain.Record)
		s.active = ""
	}
	var d Drained
	for id, rec := range records {
		if !rec.HasSnapshot() {
			d.Incomplete = append(d.Incomplete, id)
			continue
		}
		if reset {
			// Nothing else references the old map.
			d.Records = append(d.Records, rec)
		} else {
			d.Records = append(d.Records, rec.Clone())
		}
	}
	s.mu.Unlock()

	sortRecords(d.Records)
	sort.Strings(d.Incomplete)
	return d
}

// Active returns the active screen, or "" when none is.
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Get returns a copy of the screen's record.
func (s *Store) Get(screenID string) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[screenID]
	if !ok {
		return nil, domain.ErrScreenNotTracked.WithDetails("screen_id: " + screenID)
	}
	return rec.Clone(), nil
}

// Screens returns copies of all records ordered by first navigation.
func (s *Store) Screens() []*domain.Record {
	s.mu.Lock()
	out := make([]*domain.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	s.mu.Unlock()

	sortRecords(out)
	return out
}

// Stats returns aggregate counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Screens: len(s.records), Active: s.active}
	for _, rec := range s.records {
		st.Samples += len(rec.Samples)
		if rec.HasSnapshot() {
			st.Snapshots++
		}
	}
	return st
}

func sortRecords(recs []*domain.Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].FirstSeen.Equal(recs[j].FirstSeen) {
			return recs[i].FirstSeen.Before(recs[j].FirstSeen)
		}
		return recs[i].ScreenID < recs[j].ScreenID
	})
}
