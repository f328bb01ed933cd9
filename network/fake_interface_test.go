package network

import (
	"context"
	"sync"
)

// fakeInterface is a scriptable Interface used across this package's
// tests: tests control exactly when Start reports connected/failed,
// and can push header/peer/banner replies through sendTo.
type fakeInterface struct {
	server ServerID

	mu        sync.Mutex
	connected bool
	upToDate  bool
	stopped   bool
	observers map[string]Observer
}

func newFakeInterface(server ServerID) *fakeInterface {
	return &fakeInterface{server: server, observers: make(map[string]Observer)}
}

func (f *fakeInterface) Start(ctx context.Context, queue chan<- StatusEvent) {
	// Tests drive connect/fail explicitly via reportConnected/reportFailed.
}

func (f *fakeInterface) reportConnected(queue chan<- StatusEvent) {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	queue <- StatusEvent{Interface: f, IsConnected: true}
}

func (f *fakeInterface) reportFailed(queue chan<- StatusEvent) {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	queue <- StatusEvent{Interface: f, IsConnected: false}
}

func (f *fakeInterface) reportDisconnected(queue chan<- StatusEvent) {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	queue <- StatusEvent{Interface: f, IsConnected: false}
}

func (f *fakeInterface) Send(requests []Request, observer Observer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return
	}
	for _, r := range requests {
		f.observers[r.Method] = observer
	}
}

func (f *fakeInterface) deliver(method string, result interface{}) {
	f.mu.Lock()
	obs := f.observers[method]
	f.mu.Unlock()
	if obs != nil {
		obs(f, Response{Method: method, Result: result})
	}
}

func (f *fakeInterface) SynchronousGet(ctx context.Context, requests []Request) ([]Response, error) {
	out := make([]Response, len(requests))
	for i, r := range requests {
		out[i] = Response{Method: r.Method}
	}
	return out, nil
}

func (f *fakeInterface) Stop() {
	f.mu.Lock()
	f.connected = false
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeInterface) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *fakeInterface) Server() ServerID { return f.server }

func (f *fakeInterface) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeInterface) IsUpToDate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upToDate
}
