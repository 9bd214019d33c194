package model

import "time"

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// WindowSpan describes two adjacent windows: prev = [PrevStart, NowStart)
// and now = [NowStart, End).
type WindowSpan struct {
	PrevStart time.Time
	NowStart  time.Time
	End       time.Time
}

// DayOverDay returns the trailing 24h window ending at asOf and the 24h before it.
func DayOverDay(asOf time.Time) WindowSpan {
	return WindowSpan{
		PrevStart: asOf.Add(-48 * time.Hour),
		NowStart:  asOf.Add(-24 * time.Hour),
		End:       asOf,
	}
}

// WindowCount is an address's interaction count in the current and previous windows.
type WindowCount struct {
	Address string
	Now     int64
	Prev    int64
}

// DegreeCount is an address's outbound and inbound counts within one window.
type DegreeCount struct {
	Address  string
	Outbound int64
	Inbound  int64
}

func (d DegreeCount) Total() int64 {
	return d.Outbound + d.Inbound
}

// ActivitySummary is a 24h rollup used by the runbook view.
type ActivitySummary struct {
	Transactions   int64 `json:"tx_24h"`
	TokenTransfers int64 `json:"transfers_24h"`
	Alerts         int64 `json:"alerts_24h"`
}
