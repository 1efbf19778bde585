package sound

// PreparedPool holds long-lived nodes keyed by sound name. Insertion order
// per name is significant: it is the selection priority used by the
// Controller's scan. Every node in a list has an ID equal to its key.
type PreparedPool struct {
	host  Host
	nodes map[string][]*Node
}

// NewPreparedPool creates an empty pool backed by the given host.
func NewPreparedPool(host Host) *PreparedPool {
	return &PreparedPool{
		host:  host,
		nodes: make(map[string][]*Node),
	}
}

// Prepare creates one fresh node for name, attaches it, and appends it to
// the name's list. It always succeeds.
func (p *PreparedPool) Prepare(name string) *Node {
	node := NewNode(name)
	p.host.Attach(node)
	p.nodes[name] = append(p.nodes[name], node)
	return node
}

// PrepareAll applies Prepare to each name in order. There is no atomicity
// across the batch; failures are not expected at this layer.
func (p *PreparedPool) PrepareAll(names []string) {
	for _, name := range names {
		p.Prepare(name)
	}
}

// SetMaxConcurrent replaces all existing nodes for name with exactly
// max(n, 1) fresh ones. A non-positive n still yields one node.
func (p *PreparedPool) SetMaxConcurrent(name string, n int) {
	p.Remove(name)
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		p.Prepare(name)
	}
}

// Remove detaches and discards every node for name. Pending completions
// are cancelled before detachment. Removing an unknown name is a no-op.
func (p *PreparedPool) Remove(name string) {
	for _, node := range p.nodes[name] {
		node.cancelPending()
		p.host.Detach(node)
	}
	delete(p.nodes, name)
}

// RemoveAll detaches and discards every node in every list.
func (p *PreparedPool) RemoveAll() {
	for name := range p.nodes {
		p.Remove(name)
	}
}

// Lookup returns the live node list for name, or nil if none prepared.
// The returned slice is the pool's own; callers must not mutate it.
func (p *PreparedPool) Lookup(name string) []*Node {
	return p.nodes[name]
}

// Contains reports whether the pool owns the given node.
func (p *PreparedPool) Contains(node *Node) bool {
	for _, n := range p.nodes[node.id] {
		if n == node {
			return true
		}
	}
	return false
}

// Len returns the total number of nodes across all names.
func (p *PreparedPool) Len() int {
	total := 0
	for _, list := range p.nodes {
		total += len(list)
	}
	return total
}
