// constructor.go - Konstruktion von Netzen aus genau einer Anfrageart
//
// Anfragearten:
// - Clone:    tiefe Kopie eines offenen Netzes
// - FromFile: synchrones Laden einer Netzdefinition
// - adopt:    Uebernahme eines fertigen Engine-Netzes (nur fuer den Lade-Task)
// - Topology: neues Netz aus Typ, Schichten und Verbindungsrate
package fanny

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fanny/fanny/dispatch"
	"github.com/fanny/fanny/engine"
	_ "github.com/fanny/fanny/engine/refnet"
	"github.com/fanny/fanny/envconfig"
)

// Network types accepted by Topology.
const (
	TypeStandard = "standard"
	TypeSparse   = "sparse"
	TypeShortcut = "shortcut"
)

// DefaultConnectionRate is used for sparse networks without ConnectionRate.
const DefaultConnectionRate = 0.5

// Request selects how New builds a network. It is implemented by Clone, FromFile
// and Topology.
type Request interface {
	request()
}

// Clone copies another network. The copy shares no state with From.
type Clone struct {
	From *Network
}

// FromFile loads a network definition written by Save or SaveToFixed.
type FromFile struct {
	Path string
}

// Topology describes a new network. Type is one of TypeStandard (also the empty
// string), TypeSparse or TypeShortcut. Layers lists the neurons per layer, input
// layer first, and needs at least two entries. ConnectionRate applies to sparse
// networks only and must be in (0, 1].
type Topology struct {
	Type           string
	Layers         []int
	ConnectionRate *float64
}

// adopt uebernimmt ein bereits erzeugtes und geprueftes Engine-Netz.
type adopt struct {
	id  uuid.UUID
	net engine.Network
	eng engine.Engine
}

func (Clone) request()    {}
func (FromFile) request() {}
func (Topology) request() {}
func (adopt) request()    {}

// Option configures New and Load.
type Option func(*options)

type options struct {
	engine     string
	dispatcher *dispatch.Dispatcher
}

// WithEngine selects the engine by its registered name. The default is taken
// from FANNY_ENGINE.
func WithEngine(name string) Option {
	return func(o *options) {
		o.engine = name
	}
}

// WithDispatcher runs the asynchronous operations of the network on d instead of
// the process wide dispatcher.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

func resolveOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == "" {
		o.engine = envconfig.Engine()
	}
	if o.dispatcher == nil {
		o.dispatcher = dispatch.Default()
	}
	return o
}

// New builds a network from req.
func New(req Request, opts ...Option) (*Network, error) {
	o := resolveOptions(opts)

	switch r := req.(type) {
	case adopt:
		return newNetwork(r.id, r.net, r.eng, o.dispatcher), nil
	case Clone:
		return newClone(r, o)
	case *Clone:
		if r == nil {
			return nil, invalidf("nil request")
		}
		return newClone(*r, o)
	case FromFile:
		return newFromFile(r, o)
	case *FromFile:
		if r == nil {
			return nil, invalidf("nil request")
		}
		return newFromFile(*r, o)
	case Topology:
		return newFromTopology(r, o)
	case *Topology:
		if r == nil {
			return nil, invalidf("nil request")
		}
		return newFromTopology(*r, o)
	case nil:
		return nil, invalidf("nil request")
	default:
		return nil, invalidf("unknown request %T", req)
	}
}

func newClone(r Clone, o options) (*Network, error) {
	if r.From == nil {
		return nil, invalidf("clone source is nil")
	}

	src := r.From
	src.mu.Lock()
	if src.closed {
		src.mu.Unlock()
		return nil, ErrClosed
	}
	net := src.net.Copy()
	err := drain(src.net)
	src.mu.Unlock()

	if err != nil {
		if net != nil {
			net.Close()
		}
		return nil, err
	}
	if net == nil {
		return nil, fmt.Errorf("%w: copying network %s failed", ErrNativeCompute, src.id)
	}

	slog.Debug("network cloned", "source", src.id)
	return newNetwork(uuid.New(), net, src.eng, o.dispatcher), nil
}

func newFromFile(r FromFile, o options) (*Network, error) {
	if r.Path == "" {
		return nil, invalidf("path is empty")
	}
	eng, err := engine.Get(o.engine)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	net, err := eng.CreateFromFile(r.Path)
	if err != nil {
		return nil, translate(err)
	}
	return newNetwork(uuid.New(), net, eng, o.dispatcher), nil
}

func (t Topology) validate() (kind string, rate float32, err error) {
	kind = t.Type
	if kind == "" {
		kind = TypeStandard
	}
	switch kind {
	case TypeStandard, TypeSparse, TypeShortcut:
	default:
		return "", 0, invalidf("unknown network type %q", t.Type)
	}

	if len(t.Layers) < 2 {
		return "", 0, invalidf("need at least 2 layers, got %d", len(t.Layers))
	}
	for i, size := range t.Layers {
		if size <= 0 {
			return "", 0, invalidf("layer %d has %d neurons", i, size)
		}
	}

	rate = DefaultConnectionRate
	if t.ConnectionRate != nil {
		if kind != TypeSparse {
			return "", 0, invalidf("connection rate given for %s network", kind)
		}
		if *t.ConnectionRate <= 0 || *t.ConnectionRate > 1 {
			return "", 0, invalidf("connection rate %g outside (0, 1]", *t.ConnectionRate)
		}
		rate = float32(*t.ConnectionRate)
	}
	return kind, rate, nil
}

func newFromTopology(t Topology, o options) (*Network, error) {
	kind, rate, err := t.validate()
	if err != nil {
		return nil, err
	}
	eng, err := engine.Get(o.engine)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	var net engine.Network
	switch kind {
	case TypeSparse:
		net, err = eng.CreateSparse(rate, t.Layers)
	case TypeShortcut:
		net, err = eng.CreateShortcut(t.Layers)
	default:
		net, err = eng.CreateStandard(t.Layers)
	}
	if err != nil {
		return nil, translate(err)
	}
	return newNetwork(uuid.New(), net, eng, o.dispatcher), nil
}

// Load reads a network definition on a worker goroutine. An empty path is
// rejected before anything is scheduled.
func Load(path string, opts ...Option) (*dispatch.Future[*Network], error) {
	if path == "" {
		return nil, invalidf("path is empty")
	}
	o := resolveOptions(opts)
	eng, err := engine.Get(o.engine)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	t := &loadTask{
		task: newTask[*Network]("load"),
		id:   uuid.New(),
		path: path,
		eng:  eng,
		opts: o,
	}
	o.dispatcher.Submit(t.id, t)
	return t.future, nil
}
