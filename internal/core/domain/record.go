package domain

import (
	"image"
	"maps"
	"slices"
	"time"
)

// Provenance records how a screen was reached.
type Provenance struct {
	// From maps a predecessor screen id to the number of navigations from it.
	From map[string]int `json:"from"`

	// Start is set once the screen was entered with no predecessor.
	Start bool `json:"start"`
}

// NewProvenance creates an empty provenance.
func NewProvenance() Provenance {
	return Provenance{From: make(map[string]int)}
}

// AddFrom counts one navigation from predecessor. An empty predecessor
// marks the screen as a session start.
func (p *Provenance) AddFrom(predecessor string) {
	if predecessor == "" {
		p.Start = true
		return
	}
	if p.From == nil {
		p.From = make(map[string]int)
	}
	p.From[predecessor]++
}

// Visits returns the total number of counted entries into the screen.
func (p Provenance) Visits() int {
	n := 0
	for _, c := range p.From {
		n += c
	}
	if p.Start {
		n++
	}
	return n
}

// Clone returns a deep copy.
func (p Provenance) Clone() Provenance {
	return Provenance{From: maps.Clone(p.From), Start: p.Start}
}

// Record is everything tracked for a single screen.
type Record struct {
	ScreenID   string        `json:"screen_id"`
	Snapshot   image.Image   `json:"-"`
	Samples    []TouchSample `json:"samples"`
	Provenance Provenance    `json:"provenance"`
	FirstSeen  time.Time     `json:"first_seen"`
	LastSeen   time.Time     `json:"last_seen"`
}

// NewRecord creates a record for screenID.
func NewRecord(screenID string) *Record {
	now := time.Now()
	return &Record{
		ScreenID:   screenID,
		Provenance: NewProvenance(),
		FirstSeen:  now,
		LastSeen:   now,
	}
}

// HasSnapshot reports whether a snapshot was attached.
func (r *Record) HasSnapshot() bool {
	return r.Snapshot != nil
}

// Clone returns a copy that shares no mutable state with r. The snapshot
// image is shared; it is never written after being attached.
func (r *Record) Clone() *Record {
	return &Record{
		ScreenID:   r.ScreenID,
		Snapshot:   r.Snapshot,
		Samples:    slices.Clone(r.Samples),
		Provenance: r.Provenance.Clone(),
		FirstSeen:  r.FirstSeen,
		LastSeen:   r.LastSeen,
	}
}
