package condition

// Handler receives the event arguments of a fire. The arguments belong to
// the handler; the engine keeps no reference after dispatch.
type Handler func(*EventArgs)

type subscription struct {
	id int
	fn Handler
}

// observers is the per-condition subscriber list.
// Dispatch iterates a snapshot, so a handler may cancel itself or subscribe
// others without affecting the current notification.
type observers struct {
	nextID int
	subs   []subscription
}

func (o *observers) add(h Handler) func() {
	if h == nil {
		return func() {}
	}
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscription{id: id, fn: h})

	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

func (o *observers) notify(args *EventArgs) {
	if len(o.subs) == 0 || args == nil {
		return
	}
	snapshot := make([]subscription, len(o.subs))
	copy(snapshot, o.subs)
	for _, s := range snapshot {
		s.fn(args.Clone())
	}
}
