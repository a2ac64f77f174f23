package output

// Output format identifiers shared by CLI validation and writers.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// TSVHeader is the canonical header row for text/TSV record output.
// Keep this as the single source of truth; all writers should use it.
const TSVHeader = "index\tp_n\tp_n1\tanchor\tq\tk\tstatus\tradius\tside\tnew_anchor\tnew_k"
