package device

// Hub owns the adapters for the device families an application configured.
//
// Conditions look their adapter up once, at construction. A family with no
// adapter is either a configuration error (strict hub) or a permanently
// unavailable device (lenient hub), see condition.NewEdge.
type Hub struct {
	adapters map[Source]*Adapter
	order    []Source
	strict   bool
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithStrict makes condition construction fail for unconfigured families.
func WithStrict(strict bool) HubOption {
	return func(h *Hub) {
		h.strict = strict
	}
}

// NewHub creates a hub with one adapter per listed source.
// Duplicate and SourceNone entries are ignored.
func NewHub(sources []Source, opts ...HubOption) *Hub {
	h := &Hub{adapters: make(map[Source]*Adapter)}
	for _, opt := range opts {
		opt(h)
	}
	for _, src := range AllSources {
		for _, want := range sources {
			if want == src {
				h.adapters[src] = NewAdapter(src)
				h.order = append(h.order, src)
				break
			}
		}
	}
	return h
}

// Adapter returns the adapter for source, if configured.
func (h *Hub) Adapter(source Source) (*Adapter, bool) {
	a, ok := h.adapters[source]
	return a, ok
}

// Strict reports whether the hub was created with WithStrict(true).
func (h *Hub) Strict() bool {
	return h.strict
}

// Sources returns the configured families in refresh order.
func (h *Hub) Sources() []Source {
	out := make([]Source, len(h.order))
	copy(out, h.order)
	return out
}

// Refresh advances every adapter by one tick, in Source order.
func (h *Hub) Refresh() {
	for _, src := range h.order {
		h.adapters[src].Refresh()
	}
}
