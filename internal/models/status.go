package models

const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// OrderStatuses is the closed set of order states, in progression order.
var OrderStatuses = []string{
	OrderPending, OrderConfirmed, OrderProcessing,
	OrderShipped, OrderDelivered, OrderCancelled,
}

var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentFailed}

var orderRank = map[string]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderProcessing: 2,
	OrderShipped:    3,
	OrderDelivered:  4,
}

func ValidOrderStatus(s string) bool {
	if s == OrderCancelled {
		return true
	}
	_, ok := orderRank[s]
	return ok
}

func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentFailed
}

// CanTransition reports whether an order may move from one status to the
// next. The machine only moves forward one step at a time; cancelled is
// reachable from any state except the two terminal ones.
func CanTransition(from, to string) bool {
	if !ValidOrderStatus(from) || !ValidOrderStatus(to) {
		return false
	}
	if from == OrderDelivered || from == OrderCancelled {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	return orderRank[to] == orderRank[from]+1
}

const (
	SortPopularity = "popularity"
	SortNewest     = "newest"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRating     = "rating"
)

// SortOrders is the single authoritative sort enum, shared by the catalog
// listing and any client option list built from it.
var SortOrders = []string{SortPopularity, SortNewest, SortPriceAsc, SortPriceDesc, SortRating}

func ValidSortOrder(s string) bool {
	for _, v := range SortOrders {
		if v == s {
			return true
		}
	}
	return false
}

func ValidDeliveryMethod(s string) bool {
	switch s {
	case DeliveryNovaPoshta, DeliveryUkrposhta, DeliveryCourier, DeliverySelfPickup:
		return true
	}
	return false
}
