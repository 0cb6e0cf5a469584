package domain

// Segment is one of the six closed behavioral segment labels. Every
// customer is assigned exactly one label per run; the per-label customer
// sets partition the customer universe.
type Segment string

const (
	SegmentHighValueActive     Segment = "high_value_active"
	SegmentActive              Segment = "active"
	SegmentHighValueOccasional Segment = "high_value_occasional"
	SegmentRegular             Segment = "regular"
	SegmentOccasional          Segment = "occasional"
	SegmentInactive            Segment = "inactive"
)

// Segments lists all labels in classification priority order.
var Segments = []Segment{
	SegmentHighValueActive,
	SegmentActive,
	SegmentHighValueOccasional,
	SegmentRegular,
	SegmentOccasional,
	SegmentInactive,
}
