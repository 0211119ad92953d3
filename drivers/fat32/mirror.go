package fat32

import (
	"github.com/boljen/go-bitmap"
)

// MirrorReport describes how two copies of the allocation table differ.
type MirrorReport struct {
	// Differing has one bit per slot, set if the slot differs between copies.
	Differing bitmap.Bitmap
	// Slots is the number of slots compared.
	Slots uint
	// Count is the number of differing slots, including any slots present in
	// only one of the tables.
	Count uint
}

// Identical returns true if no differences were found.
func (r MirrorReport) Identical() bool {
	return r.Count == 0
}

// Differs returns true if the slot for `cluster` differs between the copies.
func (r MirrorReport) Differs(cluster ClusterID) bool {
	if uint(cluster) >= r.Slots {
		return false
	}
	return r.Differing.Get(int(cluster))
}

// DifferingClusters lists the clusters whose slots differ, in ascending order.
func (r MirrorReport) DifferingClusters() []ClusterID {
	clusters := make([]ClusterID, 0, r.Count)
	for i := uint(0); i < r.Slots; i++ {
		if r.Differing.Get(int(i)) {
			clusters = append(clusters, ClusterID(i))
		}
	}
	return clusters
}

// CompareTables compares two copies of the allocation table slot by slot. The
// reserved top four bits of each slot are compared as well, since a faithful
// mirror preserves them.
func CompareTables(first, second FileAllocationTable) MirrorReport {
	slots := first.Len()
	if second.Len() > slots {
		slots = second.Len()
	}

	report := MirrorReport{
		Differing: bitmap.New(int(slots)),
		Slots:     slots,
	}

	for i := uint(0); i < slots; i++ {
		a, errA := first.Entry(ClusterID(i))
		b, errB := second.Entry(ClusterID(i))
		if errA != nil || errB != nil || a != b {
			report.Differing.Set(int(i), true)
			report.Count++
		}
	}
	return report
}
