package network

import "testing"

func TestParsePeerListAcceptsRecentVersion(t *testing.T) {
	result := []interface{}{
		[]interface{}{"ignored", "good.example", []interface{}{"s50002", "t50001", "v1.4", "p10"}},
	}
	servers := ParsePeerList(result, 1.4)
	rec, ok := servers["good.example"]
	if !ok {
		t.Fatal("expected good.example to survive the filter")
	}
	if !rec.HasProtocol(ProtoTLS) || !rec.HasProtocol(ProtoTCP) {
		t.Fatal("expected both s and t protocols recorded")
	}
	if rec.Pruning != "10" {
		t.Fatalf("expected pruning level 10, got %q", rec.Pruning)
	}
	if rec.Version != "1.4" {
		t.Fatalf("expected version 1.4, got %q", rec.Version)
	}
}

func TestParsePeerListRejectsOldVersion(t *testing.T) {
	result := []interface{}{
		[]interface{}{"ignored", "old.example", []interface{}{"s50002", "v1.0"}},
	}
	servers := ParsePeerList(result, 1.4)
	if _, ok := servers["old.example"]; ok {
		t.Fatal("expected old.example to be dropped for an old version")
	}
}

func TestParsePeerListRejectsUnparseableVersion(t *testing.T) {
	result := []interface{}{
		[]interface{}{"ignored", "bad-version.example", []interface{}{"s50002", "vnotanumber"}},
	}
	servers := ParsePeerList(result, 1.4)
	if _, ok := servers["bad-version.example"]; ok {
		t.Fatal("expected bad-version.example to be dropped")
	}
}

func TestParsePeerListRejectsNoProtocolToken(t *testing.T) {
	result := []interface{}{
		[]interface{}{"ignored", "no-proto.example", []interface{}{"v1.4"}},
	}
	servers := ParsePeerList(result, 1.4)
	if _, ok := servers["no-proto.example"]; ok {
		t.Fatal("expected no-proto.example to be dropped: no protocol token")
	}
}

func TestParsePeerListDefaultsPruningAndPort(t *testing.T) {
	result := []interface{}{
		[]interface{}{"ignored", "defaults.example", []interface{}{"s", "v1.4", "p"}},
	}
	servers := ParsePeerList(result, 1.4)
	rec, ok := servers["defaults.example"]
	if !ok {
		t.Fatal("expected defaults.example to survive")
	}
	if port, _ := rec.Port(ProtoTLS); port != DefaultPorts[ProtoTLS] {
		t.Fatalf("expected default TLS port, got %q", port)
	}
	if rec.Pruning != "0" {
		t.Fatalf("expected empty pruning token to default to \"0\", got %q", rec.Pruning)
	}
}

func TestParsePeerListDropsMalformedEntriesOnly(t *testing.T) {
	result := []interface{}{
		[]interface{}{"ignored", "good.example", []interface{}{"s50002", "v1.4"}},
		"not even a list",
		[]interface{}{"ignored"}, // missing host
	}
	servers := ParsePeerList(result, 1.4)
	if len(servers) != 1 {
		t.Fatalf("expected exactly 1 surviving entry, got %d", len(servers))
	}
}
