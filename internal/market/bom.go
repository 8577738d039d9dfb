package market

import (
	"fmt"

	"mkts-backend/internal/refdata"
)

// BOMItem is one line of a resolved bill of materials.
type BOMItem struct {
	TypeID   int32
	Quantity int64
	Optional bool
}

// ResolvedBOM is the flattened item demand for one complete doctrine
// instance: every constituent fitting's requirements summed per item.
type ResolvedBOM struct {
	DoctrineID int32
	Items      map[int32]BOMItem
}

// UnknownFittingError marks a doctrine referencing a fitting that is absent
// from the reference table. It fails that doctrine's resolution only.
type UnknownFittingError struct {
	DoctrineID int32
	FitID      int32
}

func (e *UnknownFittingError) Error() string {
	return fmt.Sprintf("doctrine %d references unknown fitting %d", e.DoctrineID, e.FitID)
}

// merge folds one requirement line into a per-item accumulator. An item
// stays optional only while every line listing it is optional.
func merge(items map[int32]BOMItem, typeID int32, quantity int64, optional bool) {
	item, seen := items[typeID]
	item.TypeID = typeID
	item.Quantity += quantity
	if seen {
		item.Optional = item.Optional && optional
	} else {
		item.Optional = optional
	}
	items[typeID] = item
}

// ResolveFitting flattens one fitting's requirement rows into per-item
// totals. Duplicate item rows within a fitting are summed.
func ResolveFitting(reqs []refdata.FittingRequirement) map[int32]BOMItem {
	items := make(map[int32]BOMItem, len(reqs))
	for _, r := range reqs {
		merge(items, r.TypeID, r.Quantity, r.Optional)
	}
	return items
}

// ResolveDoctrine expands a doctrine into its total per-item demand.
// Listing a fitting twice doubles its demand. Resolution is pure: the same
// definition and reference table always yield the same BOM.
func ResolveDoctrine(def refdata.DoctrineDefinition, fittings map[int32][]refdata.FittingRequirement) (*ResolvedBOM, error) {
	bom := &ResolvedBOM{
		DoctrineID: def.DoctrineID,
		Items:      make(map[int32]BOMItem),
	}
	for _, fitID := range def.FitIDs {
		reqs, ok := fittings[fitID]
		if !ok {
			return nil, &UnknownFittingError{DoctrineID: def.DoctrineID, FitID: fitID}
		}
		for _, item := range ResolveFitting(reqs) {
			merge(bom.Items, item.TypeID, item.Quantity, item.Optional)
		}
	}
	return bom, nil
}
