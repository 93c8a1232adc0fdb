package domain

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Identifier
		ok   bool
	}{
		{name: "plain shipment id", raw: "41234567890", want: "41234567890", ok: true},
		{name: "surrounding whitespace", raw: "  41234567890\r\n", want: "41234567890", ok: true},
		{name: "embedded in qr payload", raw: `{"id":"41234567890","sender_id":1}`, want: "41234567890", ok: true},
		{name: "control characters removed", raw: "4123\x1d4567\x00890", want: "41234567890", ok: true},
		{name: "c1 control removed", raw: "4123\u00854567890", want: "41234567890", ok: true},
		{name: "shipment shape preferred over first digits", raw: "99-41234567890", want: "41234567890", ok: true},
		{name: "digits fallback takes first eleven", raw: "12-345-678-901-23", want: "12345678901", ok: true},
		{name: "too few digits", raw: "1234567890", ok: false},
		{name: "empty", raw: "", ok: false},
		{name: "letters only", raw: "ABCDEFGHIJKL", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeIdentifier(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (got %q)", ok, tt.ok, got)
			}
			if got != tt.want {
				t.Fatalf("id = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentifierIsDeterministic(t *testing.T) {
	raw := "scan: 4 1234567890 / 41112223334"
	first, ok := NormalizeIdentifier(raw)
	if !ok {
		t.Fatalf("expected %q to normalize", raw)
	}
	for i := 0; i < 5; i++ {
		got, _ := NormalizeIdentifier(raw)
		if got != first {
			t.Fatalf("run %d = %q, want %q", i, got, first)
		}
	}
	if first != "41112223334" {
		t.Fatalf("id = %q, want 41112223334", first)
	}
}
