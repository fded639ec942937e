package command

import "sync"

// Pool recycles Command values so steady-state command traffic (parameter
// edits, program changes) doesn't allocate on the audio thread. Stands in
// for the realtime allocator spec.md §4.3/§9 describes; see the package doc
// for why a sync.Pool is the grounded Go equivalent here.
type Pool struct {
	p sync.Pool
}

func newPool() *Pool {
	return &Pool{p: sync.Pool{New: func() any { return &Command{} }}}
}

func (p *Pool) get() *Command {
	return p.p.Get().(*Command)
}

func (p *Pool) put(c *Command) {
	p.p.Put(c)
}
