// Package audit sequences a business through directory search, website
// scrape, and listings lookup, then reconciles the NAP fields across
// sources into a per-business result.
package audit

import (
	"fmt"
	"sort"

	"github.com/sells-group/nap-audit-cli/internal/model"
	"github.com/sells-group/nap-audit-cli/internal/normalize"
)

// Outcome is the reconciler's classified view of one business: the
// discrepancy list (deterministically ordered), the derived status, and
// the human-readable summary/action strings for the report.
type Outcome struct {
	Discrepancies []model.Discrepancy
	Status        model.AuditStatus
	Summary       []string
	Actions       []string
	Notes         []string
}

// Reconcile compares the reference record against every other source.
//
// Only Address and Phone drive the aggregate status; name differences are
// recorded as informational notes. Values in the missing-sentinel set
// yield Missing discrepancies, normalized inequality yields Mismatch, and
// structured-data conformance issues pass through as Formatting. Output
// ordering is stable: discrepancies sort by field, then source tag.
func Reconcile(matchRes model.MatchResult, reference model.NapRecord, others []model.NapRecord, schemaIssues []model.Discrepancy) Outcome {
	switch matchRes.Outcome {
	case model.OutcomeSearchError:
		return Outcome{
			Status:  model.StatusError,
			Actions: []string{"Search failed: " + matchRes.Err},
		}
	case model.OutcomeMatched:
		// fall through to field comparison
	default:
		action := "Manual review required: no confident directory match found."
		if matchRes.ClosestName != "" {
			action = fmt.Sprintf("Manual review required: closest directory name was %q.", matchRes.ClosestName)
		}
		return Outcome{
			Status:  model.StatusNoMatch,
			Actions: []string{action},
		}
	}

	var out Outcome

	for _, other := range others {
		out.compareField(model.FieldAddress, reference, other, other.Address, reference.Address, normalizedAddress)
		out.compareField(model.FieldPhone, reference, other, other.Phone, reference.Phone, normalize.Phone)

		// Name is informational only: it never drives the status.
		if !model.IsMissing(other.Name) && other.Name != "" &&
			normalize.Name(other.Name) != normalize.Name(reference.Name) {
			out.Notes = append(out.Notes, fmt.Sprintf(
				"%s name %q differs from reference %q", other.Source.Label(), other.Name, reference.Name))
		}
	}

	out.Discrepancies = append(out.Discrepancies, schemaIssues...)

	sort.SliceStable(out.Discrepancies, func(i, j int) bool {
		a, b := out.Discrepancies[i], out.Discrepancies[j]
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.SourceB < b.SourceB
	})

	out.Summary = dedupSorted(categories(out.Discrepancies))
	out.Actions = append(dedup(actions(out.Discrepancies, reference)), out.Actions...)

	if len(out.Discrepancies) == 0 {
		out.Status = model.StatusAllGood
	} else {
		out.Status = model.StatusNeedsUpdate
	}
	return out
}

// compareField records a Missing or Mismatch discrepancy for one
// field/source pair, or nothing when the normalized values agree.
func (o *Outcome) compareField(field model.Field, ref, other model.NapRecord, otherVal, refVal string, canon func(string) string) {
	if model.IsMissing(otherVal) {
		o.Discrepancies = append(o.Discrepancies, model.Discrepancy{
			Field:   field,
			SourceA: ref.Source,
			SourceB: other.Source,
			ValueA:  refVal,
			ValueB:  otherVal,
			Kind:    model.KindMissing,
		})
		return
	}
	if canon(otherVal) != canon(refVal) {
		o.Discrepancies = append(o.Discrepancies, model.Discrepancy{
			Field:   field,
			SourceA: ref.Source,
			SourceB: other.Source,
			ValueA:  refVal,
			ValueB:  otherVal,
			Kind:    model.KindMismatch,
		})
	}
}

// normalizedAddress canonicalizes an address for equality comparison:
// formatting differences (case, commas, punctuation) must not read as
// mismatches, so comparison happens in name-canonical space.
func normalizedAddress(s string) string {
	return normalize.Name(normalize.Address(s))
}

func categories(discrepancies []model.Discrepancy) []string {
	out := make([]string, 0, len(discrepancies))
	for _, d := range discrepancies {
		out = append(out, d.Category())
	}
	return out
}

// actions renders one instruction per discrepancy, referencing the
// reference value the other source should be corrected to.
func actions(discrepancies []model.Discrepancy, reference model.NapRecord) []string {
	out := make([]string, 0, len(discrepancies))
	for _, d := range discrepancies {
		switch d.Kind {
		case model.KindFormatting:
			if d.ValueB != "" {
				out = append(out, fmt.Sprintf("Fix structured data markup: use %q instead of %q", d.ValueB, d.ValueA))
			} else {
				out = append(out, fmt.Sprintf("Add missing structured data field %q", d.ValueA))
			}
		default:
			out = append(out, fmt.Sprintf("Update %s %s to %q",
				d.SourceB.Label(), d.Field.String(), reference.FieldValue(d.Field)))
		}
	}
	return out
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func dedupSorted(in []string) []string {
	out := dedup(in)
	sort.Strings(out)
	return out
}
