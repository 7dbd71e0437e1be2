package risk

// GuestOrderFrequency is the placeholder frequency signal for requests with
// no account history. Kept above zero so anonymous traffic is never treated
// as fully established.
const GuestOrderFrequency = 0.2

// frequencyScale maps a trailing-window order count onto [0,1]; twenty or
// more prior orders saturate the signal.
const frequencyScale = 20.0

// SignalInput is the raw, unnormalized context of a transaction.
type SignalInput struct {
	TotalAmount float64
	OriginHash  string

	// KnownOrigins is the account's recorded login-origin history. Empty for
	// guests, who always count as a new origin.
	KnownOrigins []string

	// PreviousOrders is the account's trailing-window order count. Ignored
	// when HasHistory is false.
	PreviousOrders int
	HasHistory     bool

	// AmountCap overrides DefaultAmountCap when positive.
	AmountCap float64
}

// Normalize converts raw context into bounded scorer signals.
func Normalize(in SignalInput) Signals {
	cap := in.AmountCap
	if cap <= 0 {
		cap = DefaultAmountCap
	}

	ratio := in.TotalAmount / cap
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}

	isNew := true
	for _, origin := range in.KnownOrigins {
		if origin == in.OriginHash {
			isNew = false
			break
		}
	}

	frequency := GuestOrderFrequency
	if in.HasHistory {
		frequency = float64(in.PreviousOrders) / frequencyScale
		if frequency > 1 {
			frequency = 1
		}
	}

	return Signals{
		AmountRatio:    ratio,
		IsNewOrigin:    isNew,
		OrderFrequency: frequency,
	}
}

// Assess normalizes and scores in one step.
func Assess(in SignalInput) Assessment {
	return Score(Normalize(in))
}
