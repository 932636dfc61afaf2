package portal

import (
	"time"

	"clientportal/internal/portal/portaltest"
)

// fixture wires a Resolver and a Mutator over one in-memory database.
type fixture struct {
	db  *portaltest.Memory
	res *Resolver
	mut *Mutator
	inv *portaltest.Invalidator
	now time.Time
}

func newFixture() *fixture {
	db := portaltest.NewMemory()
	clients, configs, blocks := db.Repos()
	f := &fixture{
		db:  db,
		inv: &portaltest.Invalidator{},
		now: time.UnixMilli(1767225600000),
	}
	f.res = NewResolver(clients, configs, blocks)
	f.mut = NewMutator(clients, configs, blocks,
		WithInvalidator(f.inv),
		WithClock(func() time.Time {
			f.now = f.now.Add(time.Millisecond)
			return f.now
		}),
	)
	return f
}
