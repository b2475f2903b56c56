package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Plumbing, Inc.", "acme plumbing inc"},
		{"  360° Painting  of  Atlanta ", "360 painting of atlanta"},
		{"O'Brien & Sons", "obrien sons"},
		{"", ""},
		{"   ", ""},
		{"ALL-CAPS-NAME", "allcapsname"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Name(tc.in), "Name(%q)", tc.in)
	}
}

func TestNameIdempotent(t *testing.T) {
	inputs := []string{
		"Acme Plumbing, Inc.",
		"360° Painting of North Georgia",
		"  weird   spacing\there ",
		"",
		"already normalized text 42",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "Name not idempotent for %q", in)
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 Main St,  Springfield,  IL 62704", "123 Main St, Springfield, IL 62704"},
		{", 5335 Far Hills Ave, Dayton, OH, 45429,", "5335 Far Hills Ave, Dayton, OH, 45429"},
		{"1 Oak St,, , Denver", "1 Oak St, Denver"},
		{"   ", ""},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Address(tc.in), "Address(%q)", tc.in)
	}
}

func TestPhoneEquivalentFormats(t *testing.T) {
	want := "+15551234567"
	for _, in := range []string{
		"(555) 123-4567",
		"5551234567",
		"555.123.4567",
		"555 123 4567",
		"1-555-123-4567",
		"+1 (555) 123-4567",
	} {
		assert.Equal(t, want, Phone(in), "Phone(%q)", in)
	}
}

func TestPhonePassThrough(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+44 20 7946 0958", "442079460958"}, // non-NANP: digits pass through
		{"123", "123"},                       // malformed: not rejected
		{"", ""},
		{"call us", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Phone(tc.in), "Phone(%q)", tc.in)
	}
}
