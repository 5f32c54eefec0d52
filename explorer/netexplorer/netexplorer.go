// Package netexplorer keeps the transactions followed on a network and how many times each one has been polled.
package netexplorer

import (
	"sort"
	"sync"
)

// Status possible values, control whether a NetExplorer is working or is/has to stop
const (
	WORK int = 0
	STOP int = 1
)

// NetExplorer contains the transactions being followed on a network.
type NetExplorer struct {
	l      sync.Mutex     // guards status and Map
	status int
	Map    map[string]int `json:"map"` // transaction hash to number of polls done
}

// New returns a working NetExplorer following no transactions.
func New() *NetExplorer {
	return &NetExplorer{status: WORK, Map: make(map[string]int)}
}

// Add starts following hash. A hash already followed keeps its poll count.
func (n *NetExplorer) Add(hash string) {
	n.l.Lock()
	defer n.l.Unlock()
	if _, ok := n.Map[hash]; !ok {
		n.Map[hash] = 0
	}
}

// Del stops following hash returning its poll count and an ok flag.
func (n *NetExplorer) Del(hash string) (polls int, ok bool) {
	n.l.Lock()
	defer n.l.Unlock()
	polls, ok = n.Map[hash]
	delete(n.Map, hash)
	return
}

// Poll increments the poll count of every followed hash and returns the hashes, sorted.
func (n *NetExplorer) Poll() []string {
	n.l.Lock()
	defer n.l.Unlock()
	hashes := make([]string, 0, len(n.Map))
	for h := range n.Map {
		n.Map[h]++
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}

// Polls returns the poll count of hash.
func (n *NetExplorer) Polls(hash string) int {
	n.l.Lock()
	defer n.l.Unlock()
	return n.Map[hash]
}

// Len returns the number of followed hashes.
func (n *NetExplorer) Len() int {
	n.l.Lock()
	defer n.l.Unlock()
	return len(n.Map)
}

// Stop sets status to STOP
func (n *NetExplorer) Stop() {
	n.l.Lock()
	n.status = STOP
	n.l.Unlock()
}

// Start sets status to WORK
func (n *NetExplorer) Start() {
	n.l.Lock()
	n.status = WORK
	n.l.Unlock()
}

// Status returns the current NetExplorer status
func (n *NetExplorer) Status() int {
	n.l.Lock()
	defer n.l.Unlock()
	return n.status
}
