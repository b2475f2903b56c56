// Package schema models machine-readable business metadata embedded in web
// pages (JSON-LD LocalBusiness) and checks it for format conformance.
package schema

import (
	"encoding/json"
	"strings"

	"github.com/sells-group/nap-audit-cli/internal/model"
)

// Record is the structured-data block extracted from a page, flattened to
// the NAP fields plus the raw keys seen, so conformance checks can tell a
// missing field from a miswritten one.
type Record struct {
	Type      string
	Name      string
	Address   string
	Telephone string
	RawKeys   []string
}

// localBusiness mirrors the JSON-LD shapes we accept. Address may be a
// plain string or a PostalAddress object.
type localBusiness struct {
	Type      string          `json:"@type"`
	Name      string          `json:"name"`
	Address   json.RawMessage `json:"address"`
	Telephone string          `json:"telephone"`
	Phone     string          `json:"phone"`
}

type postalAddress struct {
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode"`
}

// Parse decodes one JSON-LD script body into a Record. Returns nil when the
// payload is not a LocalBusiness block (arrays, @graph wrappers, and other
// types are skipped, not errors).
func Parse(raw []byte) *Record {
	var lb localBusiness
	if err := json.Unmarshal(raw, &lb); err != nil {
		return nil
	}
	if !strings.EqualFold(lb.Type, "LocalBusiness") {
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil
	}
	rawKeys := make([]string, 0, len(keys))
	for k := range keys {
		rawKeys = append(rawKeys, k)
	}

	rec := &Record{
		Type:      lb.Type,
		Name:      lb.Name,
		Telephone: lb.Telephone,
		RawKeys:   rawKeys,
	}
	// The commonly-miswritten key still carries usable data.
	if rec.Telephone == "" && lb.Phone != "" {
		rec.Telephone = lb.Phone
	}
	rec.Address = flattenAddress(lb.Address)
	return rec
}

// flattenAddress accepts either a string address or a PostalAddress object
// and renders a single comparable line.
func flattenAddress(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var pa postalAddress
	if err := json.Unmarshal(raw, &pa); err != nil {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{pa.StreetAddress, pa.AddressLocality, pa.AddressRegion, pa.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// requiredKeys are the markers a conformant LocalBusiness block must carry.
var requiredKeys = []string{"@type", "name", "address", "telephone"}

// CheckConformance verifies the block's key naming against the LocalBusiness
// conventions and returns formatting-issue discrepancies: one per missing
// required marker, plus one when the telephone value arrived under the
// miswritten "phone" key. These are distinct from NAP mismatches.
func CheckConformance(rec *Record) []model.Discrepancy {
	if rec == nil {
		return nil
	}

	have := make(map[string]bool, len(rec.RawKeys))
	for _, k := range rec.RawKeys {
		have[k] = true
	}

	var out []model.Discrepancy
	for _, key := range requiredKeys {
		if key == "telephone" && !have[key] && have["phone"] {
			out = append(out, model.Discrepancy{
				Field:   model.FieldPhone,
				SourceA: model.SourceStructuredData,
				SourceB: model.SourceStructuredData,
				ValueA:  "phone",
				ValueB:  "telephone",
				Kind:    model.KindFormatting,
			})
			continue
		}
		if !have[key] {
			out = append(out, model.Discrepancy{
				Field:   fieldForKey(key),
				SourceA: model.SourceStructuredData,
				SourceB: model.SourceStructuredData,
				ValueA:  key,
				Kind:    model.KindFormatting,
			})
		}
	}
	return out
}

func fieldForKey(key string) model.Field {
	switch key {
	case "address":
		return model.FieldAddress
	case "telephone":
		return model.FieldPhone
	default:
		return model.FieldName
	}
}
