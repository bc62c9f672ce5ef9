package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) *time.Time {
		ts := now.AddDate(0, 0, -d)
		return &ts
	}

	cases := []struct {
		name string
		s    Stats
		want string
	}{
		{"no orders, fresh signup", Stats{RegisteredAt: now.AddDate(0, 0, -10)}, SegmentNew},
		{"no orders, old signup", Stats{RegisteredAt: now.AddDate(0, -7, 0)}, SegmentInactive},

		{"big spender, recent", Stats{TotalOrders: 2, TotalSpent: 15000, LastOrder: daysAgo(5), RegisteredAt: now.AddDate(-1, 0, 0)}, SegmentVIP},
		{"frequent buyer, recent", Stats{TotalOrders: 6, TotalSpent: 900, LastOrder: daysAgo(40), RegisteredAt: now.AddDate(-1, 0, 0)}, SegmentVIP},

		// recency beats spend
		{"big spender gone quiet", Stats{TotalOrders: 8, TotalSpent: 50000, LastOrder: daysAgo(120), RegisteredAt: now.AddDate(-2, 0, 0)}, SegmentAtRisk},
		{"big spender long gone", Stats{TotalOrders: 8, TotalSpent: 50000, LastOrder: daysAgo(200), RegisteredAt: now.AddDate(-2, 0, 0)}, SegmentInactive},

		{"modest recent buyer", Stats{TotalOrders: 1, TotalSpent: 300, LastOrder: daysAgo(10), RegisteredAt: now.AddDate(0, -6, 0)}, SegmentActive},
		{"modest slow buyer", Stats{TotalOrders: 2, TotalSpent: 300, LastOrder: daysAgo(60), RegisteredAt: now.AddDate(-1, 0, 0)}, SegmentRegular},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Segment(tc.s, now))
		})
	}
}

func TestSegmentBoundaries(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	daysAgo := func(d int) *time.Time {
		ts := now.AddDate(0, 0, -d)
		return &ts
	}
	base := Stats{TotalOrders: 1, TotalSpent: 100, RegisteredAt: now.AddDate(-1, 0, 0)}

	at30 := base
	at30.LastOrder = daysAgo(30)
	require.Equal(t, SegmentActive, Segment(at30, now))

	at90 := base
	at90.LastOrder = daysAgo(90)
	require.Equal(t, SegmentRegular, Segment(at90, now))

	at91 := base
	at91.LastOrder = daysAgo(91)
	require.Equal(t, SegmentAtRisk, Segment(at91, now))

	at181 := base
	at181.LastOrder = daysAgo(181)
	require.Equal(t, SegmentInactive, Segment(at181, now))

	spend := base
	spend.LastOrder = daysAgo(2)
	spend.TotalSpent = 10000
	require.Equal(t, SegmentVIP, Segment(spend, now))
}
