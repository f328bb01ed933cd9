package network

import "testing"

func newTestSelector(defaultServer ServerID) (*Selector, *MemConfig, *CallbackRegistry) {
	cfg := NewMemConfig(nil)
	cb := NewCallbackRegistry()
	subs := NewSubscriptionRegistry(func(Interface, Response) {}, func(Interface, Response) {})
	s := NewSelector(defaultServer, cfg, subs, func(Interface, Response) {}, cb)
	return s, cfg, cb
}

func TestServerIsLaggingOneBlockTolerance(t *testing.T) {
	server := ServerID{Host: "main", Port: "1", Protocol: ProtoTLS}
	s, _, _ := newTestSelector(server)

	if s.ServerIsLagging(100) {
		t.Fatal("a main with no recorded height must never be considered lagging")
	}

	s.RecordHeight(server, 100)
	if s.ServerIsLagging(101) {
		t.Fatal("lag of exactly 1 must be tolerated")
	}
	if !s.ServerIsLagging(102) {
		t.Fatal("lag of 2 must be flagged")
	}
}

func TestAdmitConnectedPromotesOnlyDesignatedMain(t *testing.T) {
	main := ServerID{Host: "main", Port: "1", Protocol: ProtoTLS}
	other := ServerID{Host: "other", Port: "1", Protocol: ProtoTLS}
	s, _, cb := newTestSelector(main)

	var statusFired int
	cb.Register(EventStatus, func() { statusFired++ })

	otherIface := newFakeInterface(other)
	otherIface.connected = true
	s.AdmitConnected(otherIface)
	if s.Main() != nil {
		t.Fatal("admitting a non-main Interface must not promote it")
	}

	mainIface := newFakeInterface(main)
	mainIface.connected = true
	s.AdmitConnected(mainIface)
	if s.Main() == nil || s.Main().Server() != main {
		t.Fatal("admitting the designated main must promote it")
	}
	if s.Status() != StatusConnected {
		t.Fatalf("expected status connected, got %v", s.Status())
	}
	if statusFired != 1 {
		t.Fatalf("expected exactly 1 status callback, got %d", statusFired)
	}
}

func TestDemoteOnlyClearsMatchingMain(t *testing.T) {
	main := ServerID{Host: "main", Port: "1", Protocol: ProtoTLS}
	s, _, _ := newTestSelector(main)
	mainIface := newFakeInterface(main)
	mainIface.connected = true
	s.AdmitConnected(mainIface)

	other := newFakeInterface(ServerID{Host: "x", Port: "1", Protocol: ProtoTLS})
	s.Demote(other)
	if s.Main() == nil {
		t.Fatal("demoting an unrelated Interface must not clear main")
	}

	s.Demote(mainIface)
	if s.Main() != nil {
		t.Fatal("demoting the current main must clear it")
	}
	if s.Status() != StatusDisconnected {
		t.Fatalf("expected status disconnected, got %v", s.Status())
	}
}

func TestPromoteRandomOnlyWhenNoMain(t *testing.T) {
	main := ServerID{Host: "main", Port: "1", Protocol: ProtoTLS}
	s, cfg, _ := newTestSelector(main)

	candidate := newFakeInterface(ServerID{Host: "candidate", Port: "1", Protocol: ProtoTLS})
	candidate.connected = true
	s.PromoteRandom([]Interface{candidate})

	if s.Main() != candidate {
		t.Fatal("expected PromoteRandom to promote the sole candidate")
	}
	if got := cfg.Get(ConfigServer, ""); got != candidate.Server().String() {
		t.Fatalf("expected default_server persisted, got %v", got)
	}

	// With a main already set, PromoteRandom must be a no-op.
	second := newFakeInterface(ServerID{Host: "second", Port: "1", Protocol: ProtoTLS})
	s.PromoteRandom([]Interface{second})
	if s.Main() != candidate {
		t.Fatal("PromoteRandom must not replace an already-set main")
	}
}

func TestSetServerProtocolMismatchRejected(t *testing.T) {
	main := ServerID{Host: "main", Port: "1", Protocol: ProtoTLS}
	s, _, _ := newTestSelector(main)
	pool, _ := newTestPool(t, ProtoTLS, 4)

	wrongProto := ServerID{Host: "x", Port: "1", Protocol: ProtoTCP}
	_, err := s.SetServer(wrongProto, pool)
	if err == nil {
		t.Fatal("expected error setting a server on a different protocol")
	}
}

func TestSetServerSameConnectedIsNoop(t *testing.T) {
	main := ServerID{Host: "main", Port: "1", Protocol: ProtoTLS}
	s, _, _ := newTestSelector(main)
	pool, _ := newTestPool(t, ProtoTLS, 4)

	mainIface := newFakeInterface(main)
	mainIface.connected = true
	s.AdmitConnected(mainIface)

	needsStart, err := s.SetServer(main, pool)
	if err != nil || needsStart {
		t.Fatalf("expected no-op for already-connected default server, got needsStart=%v err=%v", needsStart, err)
	}
}
