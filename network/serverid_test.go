package network

import "testing"

func TestServerIDRoundTrip(t *testing.T) {
	id := ServerID{Host: "explorer1.fnonetwork.example", Port: "50002", Protocol: ProtoTLS}
	s := id.String()
	got, err := ParseServerID(s)
	if err != nil {
		t.Fatalf("ParseServerID(%q): %v", s, err)
	}
	if got != id {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, id)
	}
}

func TestParseServerIDRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "host:port", "host:port:too:many", "host:port:"} {
		if _, err := ParseServerID(bad); err == nil {
			t.Errorf("ParseServerID(%q) expected error, got nil", bad)
		}
	}
}

func TestServerRecordInvariantRequiresOneProtocol(t *testing.T) {
	r := newServerRecord("h")
	if !r.Empty() {
		t.Fatal("freshly constructed record should be empty")
	}
	r.addProtocol(ProtoTCP, "")
	if r.Empty() {
		t.Fatal("record should not be empty after addProtocol")
	}
	if port, ok := r.Port(ProtoTCP); !ok || port != DefaultPorts[ProtoTCP] {
		t.Fatalf("expected default port for t, got %q ok=%v", port, ok)
	}
	if !r.HasProtocol(ProtoTCP) || r.HasProtocol(ProtoTLS) {
		t.Fatal("bitset membership incorrect")
	}
}
