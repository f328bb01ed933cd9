// Copyright (c) 2019 The fnonetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"context"
	"sync"
	"time"

	"github.com/fonero-project/fnonetwork/errors"
)

// pollTimeoutConnected and pollTimeoutIdle are the two poll timeouts
// of spec §4.H step 1.
const (
	pollTimeoutConnected = 30 * time.Second
	pollTimeoutIdle      = 3 * time.Second
)

// MinProtocolVersion gates the peer-list parser (spec §4.B).
const MinProtocolVersion = 1.4

// Network is the coordinator of spec §2: it owns the Directory (A),
// SubscriptionRegistry (D), CallbackRegistry (E), ConnectionPool (F),
// Selector (G) and drives them from a single event loop (H).
type Network struct {
	config     Config
	blockchain Blockchain

	directory *ServerDirectory
	recent    *RecentList
	subs      *SubscriptionRegistry
	callbacks *CallbackRegistry
	pool      *ConnectionPool
	selector  *Selector

	queue chan StatusEvent

	autoCycle bool
	proxy     string // last-applied SOCKS5 proxy, compared on SetParameters (spec §4.F)
	banner    string
	bannerMu  sync.Mutex

	runMu   sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// Options configures a new Network.
type Options struct {
	Config     Config
	Blockchain Blockchain
	// NewInterface constructs an Interface for a server; defaults to
	// wrapping NewWSInterface with the configured proxy.
	NewInterface NewInterfaceFunc
}

// New builds a Network from opts, choosing a default server the way
// spec §4.A / network.py's pick_random_server does when config has
// none: uniformly from the directory's servers for the configured
// protocol (the bootstrap hosts plus any hosts from the persisted
// recent list).
func New(opts Options) (*Network, error) {
	const op errors.Op = "network.New"
	cfg := opts.Config
	if cfg == nil {
		cfg = NewMemConfig(nil)
	}
	bc := opts.Blockchain
	if bc == nil {
		bc = NewNullBlockchain()
	}

	protocol := byte(asString(cfg.Get(ConfigProtocol, "s"))[0])
	proxyAddr := asString(cfg.Get(ConfigProxy, ""))
	numServer := asInt(cfg.Get(ConfigNumServer, 8))
	if asBool(cfg.Get(ConfigOneServer, false)) {
		numServer = 0
	}

	recentStrs, _ := cfg.Get(ConfigRecentServers, []string{}).([]string)
	var recentIDs []ServerID
	for _, s := range recentStrs {
		if id, err := ParseServerID(s); err == nil {
			recentIDs = append(recentIDs, id)
		}
	}
	recent := NewRecentList(recentIDs)
	directory := NewServerDirectory(recent)

	newInterface := opts.NewInterface
	if newInterface == nil {
		newInterface = func(server ServerID) Interface {
			return NewWSInterface(server, proxyAddr)
		}
	}

	n := &Network{
		config:     cfg,
		blockchain: bc,
		directory:  directory,
		recent:     recent,
		callbacks:  NewCallbackRegistry(),
		pool:       NewConnectionPool(newInterface, directory, protocol, numServer),
		queue:      make(chan StatusEvent, 256),
		autoCycle:  asBool(cfg.Get(ConfigAutoCycle, true)),
		proxy:      proxyAddr,
		done:       make(chan struct{}),
	}
	n.subs = NewSubscriptionRegistry(n.onBanner, n.onPeers)

	defaultServer, err := n.resolveDefaultServer(cfg, protocol)
	if err != nil {
		return nil, errors.E(op, err)
	}
	n.selector = NewSelector(defaultServer, cfg, n.subs, n.onHeader, n.callbacks)
	return n, nil
}

func (n *Network) resolveDefaultServer(cfg Config, protocol byte) (ServerID, error) {
	if s := asString(cfg.Get(ConfigServer, "")); s != "" {
		return ParseServerID(s)
	}
	return n.directory.PickRandom(protocol)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Start begins connecting (main plus up to NumServer-1 others) and
// launches the event loop goroutine (spec §4.F start_interfaces, §4.H).
func (n *Network) Start(ctx context.Context) {
	n.runMu.Lock()
	if n.running {
		n.runMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	n.ctx = ctx
	n.cancel = cancel
	n.running = true
	n.runMu.Unlock()

	n.blockchain.Start()
	n.pool.StartInterface(ctx, n.queue, n.selector.DefaultServer())
	for i := 0; i < n.pool.NumServer()-1; i++ {
		n.pool.StartRandomInterface(ctx, n.queue)
	}

	go n.run(ctx)
}

// Stop flips the running flag; the event loop observes it on its next
// iteration (bounded by the poll timeout) and requests Stop() on
// every connected Interface before exiting (spec §5 "Cancellation").
func (n *Network) Stop() {
	n.runMu.Lock()
	if !n.running {
		n.runMu.Unlock()
		return
	}
	n.running = false
	cancel := n.cancel
	n.runMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// WaitForShutdown blocks until the event loop goroutine has exited.
func (n *Network) WaitForShutdown() { <-n.done }

func (n *Network) isRunning() bool {
	n.runMu.Lock()
	defer n.runMu.Unlock()
	return n.running
}

// runCtx returns the context passed to Start, or a background context
// if Start has not yet been called (e.g. tests driving the pool
// directly without running the event loop).
func (n *Network) runCtx() context.Context {
	n.runMu.Lock()
	defer n.runMu.Unlock()
	if n.ctx != nil {
		return n.ctx
	}
	return context.Background()
}

// run is the single consumer of the ingress queue (spec §4.H).
func (n *Network) run(ctx context.Context) {
	defer close(n.done)
	for n.isRunning() {
		timeout := pollTimeoutIdle
		if n.pool.ConnectedCount() > 0 {
			timeout = pollTimeoutConnected
		}

		select {
		case <-ctx.Done():
			n.pool.StopAll()
			return
		case <-time.After(timeout):
			if n.pool.Size() < n.pool.NumServer() {
				n.pool.StartRandomInterface(ctx, n.queue)
			}
			continue
		case e := <-n.queue:
			n.handleStatusEvent(e)
		}

		if !n.selector.IsConnected() && n.autoCycle {
			n.selector.PromoteRandom(n.pool.ConnectedInterfaces())
		}
	}
	n.pool.StopAll()
}

// handleStatusEvent is one iteration's step 2 (spec §4.H).
func (n *Network) handleStatusEvent(e StatusEvent) {
	server := e.Interface.Server()
	n.pool.RemovePending(server)

	if e.IsConnected {
		n.pool.MarkConnected(server, e.Interface)
		n.recent.Add(server)
		recent := n.recent.Snapshot()
		recentStrs := make([]string, len(recent))
		for i, s := range recent {
			recentStrs[i] = s.String()
		}
		n.config.SetKey(ConfigRecentServers, recentStrs, false)
		e.Interface.Send([]Request{{Method: "blockchain.headers.subscribe"}}, n.onHeader)
		n.selector.AdmitConnected(e.Interface)
		return
	}

	n.pool.MarkDisconnected(server)
	n.selector.ForgetHeight(server)
	n.selector.Demote(e.Interface)
}

// onHeader implements spec §4.H on_header: it updates the HeightTable
// before forwarding to Blockchain (§5 ordering guarantee), then checks
// main lag and either stops the main (triggering a reconnect to a
// fresher peer) or triggers the updated callback.
func (n *Network) onHeader(i Interface, resp Response) {
	result, ok := decodeHeaderResult(resp.Result)
	if !ok {
		return
	}
	n.selector.RecordHeight(i.Server(), result.BlockHeight)
	n.blockchain.Queue() <- HeaderNotification{Interface: i, Result: result}

	main := n.selector.Main()
	if main == nil || main.Server() != i.Server() {
		return
	}
	if n.autoCycle && n.selector.ServerIsLagging(n.blockchain.Height()) {
		log.Infof("main %s lagging, cycling", i.Server())
		n.pool.StopInterface(i.Server())
		return
	}
	n.callbacks.Trigger(EventUpdated)
}

// onPeers implements spec §4.H on_peers: replaces the peer-announced
// directory via the peer-list parser (B).
func (n *Network) onPeers(_ Interface, resp Response) {
	result, ok := resp.Result.([]interface{})
	if !ok {
		return
	}
	servers := ParsePeerList(result, MinProtocolVersion)
	n.directory.SetPeers(servers)
	n.callbacks.Trigger(EventServers)
}

// onBanner implements spec §4.H on_banner.
func (n *Network) onBanner(_ Interface, resp Response) {
	s, ok := resp.Result.(string)
	if !ok {
		return
	}
	n.bannerMu.Lock()
	n.banner = s
	n.bannerMu.Unlock()
	n.callbacks.Trigger(EventBanner)
}

// Banner returns the last server.banner reply.
func (n *Network) Banner() string {
	n.bannerMu.Lock()
	defer n.bannerMu.Unlock()
	return n.banner
}

// Status returns the coordinator's connection_status.
func (n *Network) Status() Status { return n.selector.Status() }

// IsConnected reports whether a main Interface is held and connected.
func (n *Network) IsConnected() bool { return n.selector.IsConnected() }

// IsUpToDate reports the main Interface's own up-to-date flag, or
// false if there is none.
func (n *Network) IsUpToDate() bool {
	m := n.selector.Main()
	return m != nil && m.IsUpToDate()
}

// RegisterCallback implements spec §4.E register_callback.
func (n *Network) RegisterCallback(event CallbackEvent, observer func()) {
	n.callbacks.Register(event, observer)
}

// Subscribe implements spec §4.D subscribe: persists messages for
// observer and, if a main Interface is currently connected, forwards
// the newly added subset immediately.
func (n *Network) Subscribe(messages []Request, observer Observer) {
	fresh := n.subs.Subscribe(messages, observer)
	if len(fresh) == 0 {
		return
	}
	if main := n.selector.Main(); main != nil {
		main.Send(fresh, observer)
	}
}

// Send implements spec §4.D send: one-shot, returns false if no main
// Interface is connected (spec §7 "caller send with no main").
func (n *Network) Send(messages []Request, observer Observer) bool {
	main := n.selector.Main()
	if main == nil || !main.IsConnected() {
		return false
	}
	main.Send(messages, observer)
	return true
}

// SynchronousGet implements spec §4.H / §9: returns a well-defined
// error instead of dereferencing a possibly-nil main (spec §9).
func (n *Network) SynchronousGet(ctx context.Context, requests []Request) ([]Response, error) {
	const op errors.Op = "network.Network.SynchronousGet"
	main := n.selector.Main()
	if main == nil {
		return nil, errors.E(op, errors.NoPeers)
	}
	return main.SynchronousGet(ctx, requests)
}

// GetParameters returns the current (host, port, protocol, proxy,
// autoConnect) tuple derived from the default server (spec §9,
// restoring network.py's get_parameters).
func (n *Network) GetParameters() (host, port string, protocol byte, proxy string, autoConnect bool) {
	server := n.selector.DefaultServer()
	return server.Host, server.Port, server.Protocol, asString(n.config.Get(ConfigProxy, "")), n.autoCycle
}

// GetInterfaces returns a snapshot of currently connected ServerIDs
// (spec §9, restoring network.py's get_interfaces).
func (n *Network) GetInterfaces() []ServerID {
	ifaces := n.pool.ConnectedInterfaces()
	out := make([]ServerID, len(ifaces))
	for i, iface := range ifaces {
		out[i] = iface.Server()
	}
	return out
}

// GetLocalHeight returns the Blockchain collaborator's local tip.
func (n *Network) GetLocalHeight() int { return n.blockchain.Height() }

// SetServer implements spec §4.G set_server.
func (n *Network) SetServer(server ServerID) error {
	needsStart, err := n.selector.SetServer(server, n.pool)
	if err != nil {
		return err
	}
	if needsStart {
		n.pool.StartInterface(n.runCtx(), n.queue, server)
	}
	return nil
}

// SetParameters implements spec §4.G set_parameters / network.py
// set_parameters, including the documented transient window of spec
// §9: on protocol or proxy change every live Interface is stopped and,
// if autoConnect is set, no new main is chosen here — the event loop's
// next StartRandomInterface/PromoteRandom picks one up once a fresh
// Interface of the new protocol connects.
func (n *Network) SetParameters(host, port string, protocol byte, proxy string, autoConnect bool) error {
	n.config.SetKey(ConfigAutoCycle, autoConnect, true)
	n.config.SetKey(ConfigProxy, proxy, true)
	n.config.SetKey(ConfigProtocol, string(protocol), true)
	server := ServerID{Host: host, Port: port, Protocol: protocol}
	n.config.SetKey(ConfigServer, server.String(), true)
	n.autoCycle = autoConnect

	changed := protocol != n.pool.Protocol() || proxy != n.proxy
	n.proxy = proxy
	if changed {
		n.pool.StopAll()
		newInterface := func(s ServerID) Interface { return NewWSInterface(s, proxy) }
		n.pool.SetProtocolAndProxy(protocol, newInterface)
		if autoConnect {
			return nil
		}
		return n.SetServer(server)
	}

	if autoConnect {
		if !n.selector.IsConnected() {
			n.selector.PromoteRandom(n.pool.ConnectedInterfaces())
		} else if n.selector.ServerIsLagging(n.blockchain.Height()) {
			if main := n.selector.Main(); main != nil {
				n.pool.StopInterface(main.Server())
			}
		}
		return nil
	}
	return n.SetServer(server)
}

func decodeHeaderResult(raw interface{}) (HeaderResult, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		height, ok := v["block_height"].(float64)
		if !ok {
			return HeaderResult{}, false
		}
		merkle, _ := v["merkle_root"].(string)
		utxo, _ := v["utxo_root"].(string)
		return HeaderResult{BlockHeight: int(height), MerkleRoot: merkle, UTXORoot: utxo}, true
	case HeaderResult:
		return v, true
	default:
		return HeaderResult{}, false
	}
}
