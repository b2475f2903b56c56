// Package model defines the records and tagged outcomes shared across the
// NAP audit pipeline.
package model

import "time"

// MissingValue is the sentinel written into report cells when a source
// produced no data for a field.
const MissingValue = "N/A"

// missingSentinels are the values treated as "no data" during reconciliation.
// An empty string is NOT missing: it means the source supplied data that
// normalizes to nothing, which is still a comparable (and reportable) value.
var missingSentinels = map[string]struct{}{
	MissingValue: {},
	"Not Found":  {},
	"Error":      {},
}

// IsMissing reports whether a raw field value is in the missing-sentinel set.
func IsMissing(v string) bool {
	_, ok := missingSentinels[v]
	return ok
}

// Source identifies where a NAP record came from.
type Source string

const (
	SourceReference      Source = "reference"
	SourceWebsite        Source = "website"
	SourceDirectory      Source = "directory"
	SourceStructuredData Source = "structuredData"
)

// Label returns the human-readable report label for a source.
func (s Source) Label() string {
	switch s {
	case SourceReference:
		return "Places"
	case SourceWebsite:
		return "Website"
	case SourceDirectory:
		return "Listings"
	case SourceStructuredData:
		return "Schema"
	default:
		return string(s)
	}
}

// Field identifies one of the three NAP fields.
type Field int

const (
	FieldName Field = iota
	FieldAddress
	FieldPhone
)

// String returns the report label for a field.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldAddress:
		return "Address"
	case FieldPhone:
		return "Phone"
	default:
		return "Unknown"
	}
}

// Candidate is one result from an external directory search.
type Candidate struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// MatchOutcome tags the result of candidate selection.
type MatchOutcome string

const (
	OutcomeMatched          MatchOutcome = "matched"
	OutcomeNoConfidentMatch MatchOutcome = "no_confident_match"
	OutcomeNoResults        MatchOutcome = "no_results"
	OutcomeSearchError      MatchOutcome = "search_error"
)

// MatchResult is the outcome of selecting a candidate for a query.
// Candidate and Score are set only when Outcome is OutcomeMatched;
// ClosestName carries the top candidate's name for diagnostics when the
// best score fell below threshold; Err carries the transport failure
// message for OutcomeSearchError.
type MatchResult struct {
	Outcome     MatchOutcome `json:"outcome"`
	Candidate   Candidate    `json:"candidate,omitempty"`
	Score       float64      `json:"score,omitempty"`
	ClosestName string       `json:"closest_name,omitempty"`
	Err         string       `json:"error,omitempty"`
}

// Matched reports whether the result carries a confident candidate.
func (m MatchResult) Matched() bool { return m.Outcome == OutcomeMatched }

// SearchErrorResult builds the tagged result for an upstream transport failure.
func SearchErrorResult(msg string) MatchResult {
	return MatchResult{Outcome: OutcomeSearchError, Err: msg}
}

// NapRecord is one source's name/address/phone triple, raw as received.
type NapRecord struct {
	Source  Source `json:"source"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// FieldValue returns the record's raw value for a field.
func (r NapRecord) FieldValue(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldAddress:
		return r.Address
	default:
		return r.Phone
	}
}

// DiscrepancyKind classifies a field disagreement.
type DiscrepancyKind string

const (
	KindMissing    DiscrepancyKind = "missing"
	KindMismatch   DiscrepancyKind = "mismatch"
	KindFormatting DiscrepancyKind = "formatting"
)

// Discrepancy records one field disagreement between two sources.
// Immutable after creation.
type Discrepancy struct {
	Field   Field           `json:"field"`
	SourceA Source          `json:"source_a"`
	SourceB Source          `json:"source_b"`
	ValueA  string          `json:"value_a"`
	ValueB  string          `json:"value_b"`
	Kind    DiscrepancyKind `json:"kind"`
}

// Category is the human-readable discrepancy class used in status summaries,
// e.g. "Website Address Mismatch".
func (d Discrepancy) Category() string {
	if d.Kind == KindFormatting {
		return "Schema Formatting"
	}
	kind := "Mismatch"
	if d.Kind == KindMissing {
		kind = "Missing"
	}
	return d.SourceB.Label() + " " + d.Field.String() + " " + kind
}

// AuditStatus is the derived per-business outcome.
type AuditStatus string

const (
	StatusAllGood     AuditStatus = "All Good"
	StatusNeedsUpdate AuditStatus = "Needs Update"
	StatusNoMatch     AuditStatus = "No Match"
	StatusError       AuditStatus = "Error"
)

// AuditResult is one row of the final report. Created once per processed
// business and immutable thereafter.
type AuditResult struct {
	Query         string        `json:"query"`
	Match         MatchResult   `json:"match"`
	Reference     *NapRecord    `json:"reference,omitempty"`
	Website       *NapRecord    `json:"website,omitempty"`
	Directory     *NapRecord    `json:"directory,omitempty"`
	Structured    *NapRecord    `json:"structured_data,omitempty"`
	WebsiteURL    string        `json:"website_url,omitempty"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	Status        AuditStatus   `json:"status"`
	Summary       []string      `json:"summary,omitempty"`
	Actions       []string      `json:"actions,omitempty"`
	Notes         []string      `json:"notes,omitempty"`
}

// RunStatus represents the state of a stored audit run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusAuditing RunStatus = "auditing"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is a stored batch audit: the input queries plus the per-business results.
type Run struct {
	ID        string        `json:"id"`
	Queries   []string      `json:"queries"`
	Status    RunStatus     `json:"status"`
	Results   []AuditResult `json:"results,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
