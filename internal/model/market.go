package model

import "time"

// TickerSpec identifies one instrument in the registry.
type TickerSpec struct {
	Symbol      string `yaml:"symbol"`
	DisplayName string `yaml:"name"`
}

// RawBar is a single daily bar as reported by the data source.
// Missing provider values are NaN, never zero.
type RawBar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// DerivedRecord holds the split/dividend adjusted fields and returns for one date.
type DerivedRecord struct {
	Date      time.Time
	AdjOpen   float64
	AdjHigh   float64
	AdjLow    float64
	AdjClose  float64
	AdjVolume float64
	Ret       float64
	LogRet    float64
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
