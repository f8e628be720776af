package chart

import (
	"fmt"
	"sort"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

// Tree is an immutable arena over the chart of accounts. Nodes are indexed by
// id with precomputed parent pointers and child lists, and natures are
// resolved once at construction so lookups never re-walk the hierarchy.
// Safe for concurrent readers.
type Tree struct {
	nodes    map[int64]Account
	children map[int64][]int64
	roots    []int64
	natures  map[int64]Nature
}

// NewTree indexes the given accounts. Parent references must resolve within
// the same set and must not form a cycle.
func NewTree(accounts []Account) (*Tree, error) {
	t := &Tree{
		nodes:    make(map[int64]Account, len(accounts)),
		children: make(map[int64][]int64),
		natures:  make(map[int64]Nature, len(accounts)),
	}
	for _, acc := range accounts {
		if _, dup := t.nodes[acc.ID]; dup {
			return nil, fmt.Errorf("chart: duplicate account id %d", acc.ID)
		}
		t.nodes[acc.ID] = acc
	}
	for _, acc := range t.nodes {
		if acc.ParentID == nil {
			t.roots = append(t.roots, acc.ID)
			continue
		}
		if _, ok := t.nodes[*acc.ParentID]; !ok {
			return nil, fmt.Errorf("chart: account %d references missing parent %d", acc.ID, *acc.ParentID)
		}
		t.children[*acc.ParentID] = append(t.children[*acc.ParentID], acc.ID)
	}
	t.sortChildren()
	for id := range t.nodes {
		nature, err := t.resolveNatureUncached(id)
		if err != nil {
			return nil, err
		}
		t.natures[id] = nature
	}
	return t, nil
}

func (t *Tree) sortChildren() {
	byCode := func(ids []int64) {
		sort.Slice(ids, func(i, j int) bool {
			return t.nodes[ids[i]].Code < t.nodes[ids[j]].Code
		})
	}
	for _, ids := range t.children {
		byCode(ids)
	}
	byCode(t.roots)
}

// resolveNatureUncached walks the ancestor chain. An acyclic chain reaches a
// root or an explicit nature within len(nodes) steps; anything longer is a
// cyclic parent_id chain in the stored chart.
func (t *Tree) resolveNatureUncached(id int64) (Nature, error) {
	start := id
	for steps := 0; steps <= len(t.nodes); steps++ {
		node := t.nodes[id]
		if node.Nature != "" {
			return node.Nature, nil
		}
		if node.ParentID == nil {
			return "", nil
		}
		id = *node.ParentID
	}
	return "", fmt.Errorf("chart: cyclic parent chain at account %d", start)
}

// Get returns the account for the given id.
func (t *Tree) Get(id int64) (Account, error) {
	acc, ok := t.nodes[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: id %d", shared.ErrAccountNotFound, id)
	}
	return acc, nil
}

// ResolveNature returns the explicit or inherited nature for an account.
func (t *Tree) ResolveNature(id int64) (Nature, error) {
	if _, ok := t.nodes[id]; !ok {
		return "", fmt.Errorf("%w: id %d", shared.ErrAccountNotFound, id)
	}
	nature := t.natures[id]
	if nature == "" {
		return "", fmt.Errorf("%w: id %d", shared.ErrOrphanedNature, id)
	}
	return nature, nil
}

// LeafDescendants collects, depth first, every sub-account under the given
// node. The node itself is included when it is a sub-account.
func (t *Tree) LeafDescendants(id int64) ([]Account, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: id %d", shared.ErrAccountNotFound, id)
	}
	var leaves []Account
	var walk func(int64)
	walk = func(nodeID int64) {
		node := t.nodes[nodeID]
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
		for _, child := range t.children[nodeID] {
			walk(child)
		}
	}
	walk(id)
	return leaves, nil
}

// FlatAccount is the picker-friendly projection of a chart node.
type FlatAccount struct {
	ID       int64       `json:"id"`
	ParentID *int64      `json:"parent_id,omitempty"`
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Kind     AccountKind `json:"kind"`
	Nature   Nature      `json:"nature,omitempty"`
	Depth    int         `json:"depth"`
}

// Flatten projects the tree into a depth-annotated list in chart order.
func (t *Tree) Flatten() []FlatAccount {
	out := make([]FlatAccount, 0, len(t.nodes))
	var walk func(int64, int)
	walk = func(id int64, depth int) {
		node := t.nodes[id]
		out = append(out, FlatAccount{
			ID:       node.ID,
			ParentID: node.ParentID,
			Code:     node.Code,
			Name:     node.Name,
			Kind:     node.Kind,
			Nature:   t.natures[id],
			Depth:    depth,
		})
		for _, child := range t.children[id] {
			walk(child, depth+1)
		}
	}
	for _, root := range t.roots {
		walk(root, 0)
	}
	return out
}

// Len returns the number of indexed accounts.
func (t *Tree) Len() int {
	return len(t.nodes)
}
