package market

import (
	"errors"
	"fmt"
	"sort"
)

// ReadinessPolicy controls how optional BOM items participate in the
// fit-count minimum. The optional carve-out is policy, not hard-coded:
// with ExcludeOptional false, optional items count like required ones.
type ReadinessPolicy struct {
	ExcludeOptional bool
}

// ErrEmptyDoctrine marks a doctrine whose resolved BOM has no items that
// participate in the readiness minimum. Malformed reference data; the
// doctrine is excluded from output, the run continues.
var ErrEmptyDoctrine = errors.New("doctrine has no required items")

// ItemReadiness is the per-item breakdown behind a doctrine's fit-count.
type ItemReadiness struct {
	TypeID    int32
	Required  int64
	Available int64
	Fits      int64
	Optional  bool
	Limiting  bool
}

// DoctrineReadiness is the number of complete doctrine instances the
// current market can supply at one location.
type DoctrineReadiness struct {
	DoctrineID int32
	LocationID int64
	FitCount   int64
	Items      []ItemReadiness
}

// ComputeReadiness matches a resolved BOM against the per-item statistics
// for one location. Availability is the item's live sell volume; an item
// with no stats row counts as zero available, which is a defined zero, so
// the doctrine's fit-count is zero rather than undefined. Items excluded
// by policy are still reported, with their own fits value, but never set
// the minimum.
func ComputeReadiness(bom *ResolvedBOM, stats map[int32]ItemStat, locationID int64, policy ReadinessPolicy) (*DoctrineReadiness, error) {
	out := &DoctrineReadiness{
		DoctrineID: bom.DoctrineID,
		LocationID: locationID,
		Items:      make([]ItemReadiness, 0, len(bom.Items)),
	}

	counted := 0
	minFits := int64(-1)
	for _, item := range bom.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("doctrine %d item %d: non-positive quantity %d",
				bom.DoctrineID, item.TypeID, item.Quantity)
		}
		var available int64
		if s, ok := stats[item.TypeID]; ok {
			available = s.SellVolume
		}
		fits := available / item.Quantity

		excluded := policy.ExcludeOptional && item.Optional
		if !excluded {
			counted++
			if minFits < 0 || fits < minFits {
				minFits = fits
			}
		}

		out.Items = append(out.Items, ItemReadiness{
			TypeID:    item.TypeID,
			Required:  item.Quantity,
			Available: available,
			Fits:      fits,
			Optional:  item.Optional,
		})
	}

	if counted == 0 {
		return nil, fmt.Errorf("doctrine %d: %w", bom.DoctrineID, ErrEmptyDoctrine)
	}
	out.FitCount = minFits

	// Flag the bottleneck item(s): every counted item sitting at the
	// minimum limits the doctrine.
	for i := range out.Items {
		item := &out.Items[i]
		if policy.ExcludeOptional && item.Optional {
			continue
		}
		item.Limiting = item.Fits == minFits
	}

	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].TypeID < out.Items[j].TypeID })
	return out, nil
}
