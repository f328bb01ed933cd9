package network

import "testing"

func TestSubscriptionRegistryDedup(t *testing.T) {
	r := &SubscriptionRegistry{byObs: make(map[*subEntry]bool)}
	var calls int
	obs := Observer(func(Interface, Response) { calls++ })

	fresh1 := r.Subscribe([]Request{{Method: "blockchain.headers.subscribe"}}, obs)
	fresh2 := r.Subscribe([]Request{{Method: "blockchain.headers.subscribe"}}, obs)

	if len(fresh1) != 1 {
		t.Fatalf("expected 1 fresh message on first subscribe, got %d", len(fresh1))
	}
	if len(fresh2) != 0 {
		t.Fatalf("expected 0 fresh messages on duplicate subscribe, got %d", len(fresh2))
	}
}

func TestSubscriptionRegistryReplayAll(t *testing.T) {
	r := &SubscriptionRegistry{byObs: make(map[*subEntry]bool)}
	var gotA, gotB []Request
	obsA := Observer(func(Interface, Response) {})
	obsB := Observer(func(Interface, Response) {})

	r.Subscribe([]Request{{Method: "server.banner"}}, obsA)
	r.Subscribe([]Request{{Method: "server.peers.subscribe"}}, obsB)

	main := newFakeInterface(ServerID{Host: "h", Port: "1", Protocol: ProtoTLS})
	main.connected = true
	r.ReplayAll(main)

	main.mu.Lock()
	for method := range main.observers {
		switch method {
		case "server.banner":
			gotA = append(gotA, Request{Method: method})
		case "server.peers.subscribe":
			gotB = append(gotB, Request{Method: method})
		}
	}
	main.mu.Unlock()

	if len(gotA) != 1 || len(gotB) != 1 {
		t.Fatalf("expected both subscriptions replayed onto main, got A=%d B=%d", len(gotA), len(gotB))
	}
}

func TestPreSeededSubscriptionsReplay(t *testing.T) {
	var bannerCalls, peersCalls int
	r := NewSubscriptionRegistry(
		func(Interface, Response) { bannerCalls++ },
		func(Interface, Response) { peersCalls++ },
	)
	main := newFakeInterface(ServerID{Host: "h", Port: "1", Protocol: ProtoTLS})
	main.connected = true
	r.ReplayAll(main)

	main.deliver("server.banner", "hello")
	main.deliver("server.peers.subscribe", []interface{}{})

	if bannerCalls != 1 || peersCalls != 1 {
		t.Fatalf("expected pre-seeded subscriptions to fire once each, got banner=%d peers=%d", bannerCalls, peersCalls)
	}
}
