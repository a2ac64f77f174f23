// pkg/api/records_v1.go
package api

// RecordV1 is the stable JSON/JSONL schema for one composite-exception
// anchor and its correction outcome. Keep fields, names, and types
// stable. Add new fields only with ",omitempty".
type RecordV1 struct {
	Index  int    `json:"index"`
	Pn     uint64 `json:"p_n"`
	Pn1    uint64 `json:"p_n1"`
	Anchor uint64 `json:"anchor"`
	Q      uint64 `json:"q"`
	K      uint64 `json:"k"`

	Status    string `json:"status"` // "resolved" | "unresolved"
	Radius    int    `json:"radius,omitempty"`
	Side      string `json:"side,omitempty"` // "prev" | "next"
	NewAnchor uint64 `json:"new_anchor,omitempty"`
	NewK      uint64 `json:"new_k,omitempty"`

	ControlFixed    *bool `json:"control_fixed,omitempty"`
	ControlAttempts int   `json:"control_attempts,omitempty"`
}

// UnresolvedV1 carries full detail of a falsifying exception.
type UnresolvedV1 struct {
	Index  int    `json:"index"`
	Pn     uint64 `json:"p_n"`
	Pn1    uint64 `json:"p_n1"`
	Anchor uint64 `json:"anchor"`
	Q      uint64 `json:"q"`
	K      uint64 `json:"k"`
}

// RadiusCountV1 is one radius histogram bucket.
type RadiusCountV1 struct {
	Radius int   `json:"radius"`
	Count  int64 `json:"count"`
}

// IntervalV1 is one decay-analysis row.
type IntervalV1 struct {
	End        int     `json:"end"` // pair index interval end
	Exceptions int64   `json:"exceptions"`
	R1Percent  float64 `json:"r1_percent"`
	R2Percent  float64 `json:"r2_percent"` // cumulative r<=2
}

// Mod6BinV1 is one mod-6 classifier bin. Violations lists the k-values
// that break the bin's divisibility law: bin 0 must hold no k divisible
// by 3, bins 2 and 4 only k divisible by 3.
type Mod6BinV1 struct {
	Bin        int      `json:"bin"` // anchor % 6
	Total      int64    `json:"total"`
	KValue     []uint64 `json:"k_values"` // unique composite k, ascending
	Violations []uint64 `json:"violations,omitempty"`
}

// ControlV1 summarizes the random-control comparison.
type ControlV1 struct {
	Mode        string  `json:"mode"`
	Trials      int64   `json:"trials"`
	Fixes       int64   `json:"fixes"`
	Failures    int64   `json:"failures"`
	MaxAttempts int     `json:"max_attempts"`
	FixRate     float64 `json:"fix_rate_percent"`
	Advantage   float64 `json:"advantage_percent"` // r<=2 rate minus control rate
}

// SummaryV1 is the stable schema for the aggregate report.
type SummaryV1 struct {
	SieveLimit   uint64  `json:"sieve_limit"`
	StartIndex   int     `json:"start_index"`
	Pairs        int64   `json:"pairs"`
	Exceptions   int64   `json:"exceptions"`
	CleanPercent float64 `json:"clean_percent"`
	MaxRadius    int     `json:"max_radius"`

	RadiusHist []RadiusCountV1 `json:"radius_histogram"`
	Unresolved []UnresolvedV1  `json:"unresolved,omitempty"`
	Verdict    string          `json:"verdict"` // "verified" | "falsified" | "structural" | "artifact"

	Control   *ControlV1   `json:"control,omitempty"`
	Intervals []IntervalV1 `json:"intervals,omitempty"`
	Mod6      []Mod6BinV1  `json:"mod6,omitempty"`
}
