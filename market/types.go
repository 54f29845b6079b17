package market

// OptionSide is the polarity of a structured product.
type OptionSide int8

const (
	SideNone OptionSide = iota
	SideCall
	SidePut
)

func (s OptionSide) String() string {
	switch s {
	case SideCall:
		return "CALL"
	case SidePut:
		return "PUT"
	}
	return "NONE"
}

// SecurityType distinguishes underlyings from listed derivatives.
type SecurityType int8

const (
	SecurityTypeStock SecurityType = iota
	SecurityTypeIndex
	SecurityTypeWarrant
)

// Aggressor side of a market print, exchange feed convention: a lift of the
// offer carries -1, a hit of the bid carries 1.
const (
	AggressorAsk int32 = -1
	AggressorBid int32 = 1
)

// TriggerInfo is the causal-ordering tag attached to every market-data tick.
// It is diagnostic only and never read by control flow.
type TriggerInfo struct {
	TriggeredBy int32
	Seq         uint32
	NanoOfDay   int64
}

// Trade is one market print.
type Trade struct {
	SecSid      int64
	Price       int64
	Quantity    int64
	Side        int32
	NanoOfDay   int64
	TriggerInfo TriggerInfo
}

// Greeks carries externally computed risk sensitivities. Delta and gamma are
// scaled by 1e5, RefSpot by PriceScale.
type Greeks struct {
	SecSid     int64
	Delta      int64
	Gamma      int64
	Vega       int64
	ImpliedVol int64
	RefSpot    int64
	Bid        int64
	Ask        int64
}

// OrderStatus is the exchange acknowledgement state of an order.
type OrderStatus int8

const (
	OrderStatusNew OrderStatus = iota
	OrderStatusPartiallyFilled
	OrderStatusFilled
	OrderStatusCancelled
	OrderStatusExpired
	OrderStatusRejected
	OrderStatusFailed
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusNew:
		return "NEW"
	case OrderStatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case OrderStatusFilled:
		return "FILLED"
	case OrderStatusCancelled:
		return "CANCELLED"
	case OrderStatusExpired:
		return "EXPIRED"
	case OrderStatusRejected:
		return "REJECTED"
	case OrderStatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// OrderRejectType classifies reject reason codes so the automaton can map
// them to local remediation instead of propagating an error.
type OrderRejectType int8

const (
	RejectNone OrderRejectType = iota
	RejectThrottled
	RejectTimeout
	RejectInsufficientPosition
	RejectIncorrectPrice
	RejectOther
)

func (r OrderRejectType) String() string {
	switch r {
	case RejectNone:
		return "NONE"
	case RejectThrottled:
		return "THROTTLED"
	case RejectTimeout:
		return "TIMEOUT"
	case RejectInsufficientPosition:
		return "INSUFFICIENT_POSITION"
	case RejectIncorrectPrice:
		return "INCORRECT_PRICE"
	}
	return "OTHER"
}
