package advisor

// Suggestion is the budget split contract: three numeric allocations that
// should sum to the requested amount, plus a short advisory string.
type Suggestion struct {
	Food           float64 `json:"food"`
	Transportation float64 `json:"transportation"`
	Other          float64 `json:"other"`
	Tips           string  `json:"tips"`
}

const FallbackTips = "AI is unavailable. Using default 40-30-30 budget allocation."

// FallbackSplit is the deterministic 40/30/30 allocation. It needs no
// external service and never fails; it is also the contract the advice
// service is asked to satisfy.
func FallbackSplit(amount float64) Suggestion {
	return Suggestion{
		Food:           amount * 0.4,
		Transportation: amount * 0.3,
		Other:          amount * 0.3,
		Tips:           FallbackTips,
	}
}
