// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"context"
	"encoding/json"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"

	"github.com/fonero-project/fnonetwork/errors"
)

// wireMessage is the line-oriented JSON-RPC envelope used by the
// federation protocol (spec §6): requests carry an id, notifications
// and their replies echo a method name, and result is shapeless.
type wireMessage struct {
	ID     int             `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params []interface{}   `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// WSInterface is the default Interface implementation (spec §4.C): a
// single websocket connection per federation server, framed the way
// chain/chain.go's RPCClient frames its notification channel — an
// enqueue/dequeue goroutine pair synchronized through a quit channel
// and WaitGroup, plus a keepalive ticker.
type WSInterface struct {
	server    ServerID
	proxyAddr string

	mu        sync.Mutex
	conn      *websocket.Conn
	queue     chan<- StatusEvent
	pending   map[int]Observer
	subs      map[string]Observer
	nextID    int
	connected bool
	finalSent bool
	upToDate  int32 // atomic bool

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewWSInterface returns an unstarted Interface targeting server,
// dialing through proxyAddr (a SOCKS5 "host:port", or "" for a direct
// connection) per the coordinator's "proxy" config key.
func NewWSInterface(server ServerID, proxyAddr string) *WSInterface {
	return &WSInterface{
		server:    server,
		proxyAddr: proxyAddr,
		pending:   make(map[int]Observer),
		subs:      make(map[string]Observer),
		quit:      make(chan struct{}),
	}
}

func (i *WSInterface) dialer() *websocket.Dialer {
	d := &websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	if i.proxyAddr != "" {
		sockDialer, err := proxy.SOCKS5("tcp", i.proxyAddr, nil, proxy.Direct)
		if err == nil {
			d.NetDial = func(network, addr string) (net.Conn, error) {
				return sockDialer.Dial(network, addr)
			}
		}
	}
	return d
}

func (i *WSInterface) url() string {
	scheme := "ws"
	if i.server.Protocol == ProtoTLS || i.server.Protocol == ProtoHTTPS {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: net.JoinHostPort(i.server.Host, i.server.Port), Path: "/"}
	return u.String()
}

// Start implements Interface. It blocks until the dial resolves (either
// connected or failed) so that ConnectionPool.StartInterface's wrapping
// goroutine holds its semaphore permit for the duration of the actual
// connection attempt (spec §4.F "bounds concurrent in-flight connect
// attempts"), not just for the microseconds it takes to spawn a
// goroutine. Only the post-connect read loop runs asynchronously.
func (i *WSInterface) Start(ctx context.Context, queue chan<- StatusEvent) {
	i.mu.Lock()
	i.queue = queue
	i.mu.Unlock()

	conn, _, err := i.dialer().DialContext(ctx, i.url(), nil)
	if err != nil {
		log.Debugf("%s: connect failed: %v", i.server, err)
		queue <- StatusEvent{Interface: i, IsConnected: false}
		return
	}

	i.mu.Lock()
	i.conn = conn
	i.connected = true
	i.mu.Unlock()

	i.wg.Add(1)
	go i.readLoop()

	queue <- StatusEvent{Interface: i, IsConnected: true}
}

// sendFinalDisconnect enqueues the one final StatusEvent a connected
// Interface owes the coordinator after it stops (spec §4.C), at most
// once.
func (i *WSInterface) sendFinalDisconnect() {
	i.mu.Lock()
	wasConnected := i.connected
	i.connected = false
	already := i.finalSent
	if wasConnected && !already {
		i.finalSent = true
	}
	queue := i.queue
	i.mu.Unlock()

	if wasConnected && !already && queue != nil {
		queue <- StatusEvent{Interface: i, IsConnected: false}
	}
}

func (i *WSInterface) readLoop() {
	defer i.wg.Done()
	ping := time.NewTicker(60 * time.Second)
	defer ping.Stop()

	msgs := make(chan wireMessage)
	go func() {
		defer close(msgs)
		for {
			var m wireMessage
			if err := i.conn.ReadJSON(&m); err != nil {
				return
			}
			msgs <- m
		}
	}()

	for {
		select {
		case m, ok := <-msgs:
			if !ok {
				i.sendFinalDisconnect()
				return
			}
			i.dispatch(m)
		case <-ping.C:
			i.mu.Lock()
			c := i.conn
			i.mu.Unlock()
			if c != nil {
				_ = c.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
			}
		case <-i.quit:
			return
		}
	}
}

func (i *WSInterface) dispatch(m wireMessage) {
	resp := Response{Method: m.Method, Result: m.Result}
	if m.Method == "blockchain.headers.subscribe" {
		atomic.StoreInt32(&i.upToDate, 1)
	}

	i.mu.Lock()
	var obs Observer
	if m.ID != 0 {
		obs = i.pending[m.ID]
		delete(i.pending, m.ID)
	}
	if obs == nil && m.Method != "" {
		obs = i.subs[m.Method]
	}
	i.mu.Unlock()

	if obs != nil {
		obs(i, resp)
	}
}

// Send implements Interface.
func (i *WSInterface) Send(requests []Request, observer Observer) {
	i.mu.Lock()
	conn := i.conn
	connected := i.connected
	if !connected {
		i.mu.Unlock()
		return
	}
	for _, r := range requests {
		i.nextID++
		id := i.nextID
		i.pending[id] = observer
		if isSubscribeMethod(r.Method) {
			i.subs[r.Method] = observer
		}
		msg := wireMessage{ID: id, Method: r.Method, Params: r.Args}
		i.mu.Unlock()
		_ = conn.WriteJSON(msg)
		i.mu.Lock()
	}
	i.mu.Unlock()
}

func isSubscribeMethod(method string) bool {
	return len(method) > 10 && method[len(method)-10:] == ".subscribe"
}

// SynchronousGet implements Interface.
func (i *WSInterface) SynchronousGet(ctx context.Context, requests []Request) ([]Response, error) {
	const op errors.Op = "network.WSInterface.SynchronousGet"
	if !i.IsConnected() {
		return nil, errors.E(op, errors.NoPeers)
	}

	results := make([]Response, len(requests))
	done := make(chan struct{})
	var once sync.Once
	remaining := int32(len(requests))

	for idx, r := range requests {
		idx := idx
		i.Send([]Request{r}, func(_ Interface, resp Response) {
			results[idx] = resp
			if atomic.AddInt32(&remaining, -1) == 0 {
				once.Do(func() { close(done) })
			}
		})
	}

	select {
	case <-done:
		return results, nil
	case <-ctx.Done():
		return nil, errors.E(op, errors.IO, ctx.Err())
	}
}

// Stop implements Interface.
func (i *WSInterface) Stop() {
	i.mu.Lock()
	select {
	case <-i.quit:
		i.mu.Unlock()
		return
	default:
		close(i.quit)
	}
	conn := i.conn
	i.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	i.wg.Wait()
	i.sendFinalDisconnect()
}

// Server implements Interface.
func (i *WSInterface) Server() ServerID { return i.server }

// IsConnected implements Interface.
func (i *WSInterface) IsConnected() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.connected
}

// IsUpToDate implements Interface.
func (i *WSInterface) IsUpToDate() bool {
	return atomic.LoadInt32(&i.upToDate) == 1
}
