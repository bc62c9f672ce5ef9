package crm

import "time"

const (
	SegmentVIP      = "VIP"
	SegmentActive   = "Active"
	SegmentRegular  = "Regular"
	SegmentAtRisk   = "At Risk"
	SegmentInactive = "Inactive"
	SegmentNew      = "New"
)

var Segments = []string{
	SegmentVIP, SegmentActive, SegmentRegular,
	SegmentAtRisk, SegmentInactive, SegmentNew,
}

const (
	vipSpentThreshold  = 10000
	vipOrdersThreshold = 5

	activeWindowDays = 30
	atRiskAfterDays  = 90
	inactiveDays     = 180

	newCustomerDays = 90
)

// Stats is the order history a segment is derived from.
type Stats struct {
	TotalOrders  int
	TotalSpent   float64
	LastOrder    *time.Time
	RegisteredAt time.Time
}

// Segment classifies a customer from order recency and volume. Recency wins:
// a high spender who went quiet is At Risk or Inactive, not VIP.
func Segment(s Stats, now time.Time) string {
	if s.TotalOrders == 0 {
		if now.Sub(s.RegisteredAt) <= newCustomerDays*24*time.Hour {
			return SegmentNew
		}
		return SegmentInactive
	}

	days := 0
	if s.LastOrder != nil {
		days = int(now.Sub(*s.LastOrder).Hours() / 24)
	}

	switch {
	case days > inactiveDays:
		return SegmentInactive
	case days > atRiskAfterDays:
		return SegmentAtRisk
	case s.TotalSpent >= vipSpentThreshold || s.TotalOrders >= vipOrdersThreshold:
		return SegmentVIP
	case days <= activeWindowDays:
		return SegmentActive
	default:
		return SegmentRegular
	}
}
