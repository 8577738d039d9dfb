// Package refdata holds the static reference tables the pipeline consumes:
// the tracked-item watchlist, fitting requirements, doctrine definitions and
// per-doctrine stock targets. A Set is loaded once per run and treated as
// immutable for the run's duration.
package refdata

import (
	"errors"
	"fmt"
	"sort"
)

// ItemInfo describes one watchlist entry with its SDE classification.
type ItemInfo struct {
	TypeID       int32
	TypeName     string
	GroupID      int32
	GroupName    string
	CategoryID   int32
	CategoryName string
}

// FittingRequirement is one row of a fitting's bill of materials:
// Quantity units of TypeID are needed per hull. Optional items (cargo
// spares, situational modules) can be excluded from readiness math by
// policy.
type FittingRequirement struct {
	FitID    int32
	TypeID   int32
	Quantity int64
	Optional bool
}

// DoctrineDefinition names a doctrine and the fittings it comprises.
// A fitting may appear more than once; each occurrence adds its full
// item demand (two Harpy slots in a doctrine need two Harpy fits).
type DoctrineDefinition struct {
	DoctrineID int32
	Name       string
	FitIDs     []int32
}

// Set is the full immutable reference snapshot for one pipeline run.
type Set struct {
	Watchlist map[int32]ItemInfo
	Fittings  map[int32][]FittingRequirement
	Doctrines []DoctrineDefinition

	// Targets maps doctrine id to the desired number of stocked fits.
	Targets map[int32]int
}

// ErrNoReferenceData marks a run that cannot start at all.
var ErrNoReferenceData = errors.New("refdata: no reference data loaded")

// Validate checks the structural preconditions for a pipeline run.
// An empty watchlist or an empty doctrine table is fatal; per-doctrine
// integrity problems are not (they surface during resolution).
func (s *Set) Validate() error {
	if s == nil {
		return ErrNoReferenceData
	}
	if len(s.Watchlist) == 0 {
		return fmt.Errorf("%w: empty watchlist", ErrNoReferenceData)
	}
	if len(s.Doctrines) == 0 {
		return fmt.Errorf("%w: no doctrines defined", ErrNoReferenceData)
	}
	if len(s.Fittings) == 0 {
		return fmt.Errorf("%w: no fitting requirements", ErrNoReferenceData)
	}
	return nil
}

// WatchedTypeIDs returns the watchlist type ids in ascending order.
func (s *Set) WatchedTypeIDs() []int32 {
	ids := make([]int32, 0, len(s.Watchlist))
	for id := range s.Watchlist {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TypeName resolves a type id to its name, falling back to "Type <id>".
func (s *Set) TypeName(typeID int32) string {
	if info, ok := s.Watchlist[typeID]; ok && info.TypeName != "" {
		return info.TypeName
	}
	return fmt.Sprintf("Type %d", typeID)
}
