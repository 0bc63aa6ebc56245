package model

// Classification is the screening verdict for one ticker.
type Classification int

const (
	Neither Classification = iota
	Overbought
	Oversold
)

func (c Classification) String() string {
	switch c {
	case Overbought:
		return "Overbought"
	case Oversold:
		return "Oversold"
	default:
		return "Neither"
	}
}

// ClassifiedTicker is one row of the filtered-ticker result table.
type ClassifiedTicker struct {
	Symbol string `json:"Symbol" parquet:"Symbol"`
	Type   string `json:"Type" parquet:"Type"`
}
