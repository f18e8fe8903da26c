package ledger

import (
	"fmt"
	"sort"
)

// Account models a chart of accounts node as seen by the engine. Accounts are
// maintained elsewhere; the engine only ever reads them.
type Account struct {
	ID       int64
	Code     string
	Name     string
	ParentID *int64
	IsLeaf   bool
	TypeID   int64
	Side     Side
}

// Chart is an immutable snapshot of the account hierarchy built once per
// report request. All lookups run against in-memory indexes; the snapshot is
// safe for concurrent use.
type Chart struct {
	accounts []Account
	byID     map[int64]int
	children map[int64][]int64
	depth    map[int64]int
}

// NewChart indexes the account set and validates the parent graph. A cycle or
// a parent reference to an unknown account yields ErrCorruptHierarchy.
func NewChart(accounts []Account) (*Chart, error) {
	c := &Chart{
		accounts: make([]Account, len(accounts)),
		byID:     make(map[int64]int, len(accounts)),
		children: make(map[int64][]int64),
		depth:    make(map[int64]int, len(accounts)),
	}
	copy(c.accounts, accounts)
	sort.Slice(c.accounts, func(i, j int) bool { return c.accounts[i].Code < c.accounts[j].Code })
	for i, acc := range c.accounts {
		if _, dup := c.byID[acc.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate account id %d", ErrCorruptHierarchy, acc.ID)
		}
		c.byID[acc.ID] = i
	}
	for _, acc := range c.accounts {
		if acc.ParentID == nil {
			continue
		}
		if _, ok := c.byID[*acc.ParentID]; !ok {
			return nil, fmt.Errorf("%w: account %d references unknown parent %d", ErrCorruptHierarchy, acc.ID, *acc.ParentID)
		}
		c.children[*acc.ParentID] = append(c.children[*acc.ParentID], acc.ID)
	}
	for _, acc := range c.accounts {
		depth, err := c.resolveDepth(acc.ID)
		if err != nil {
			return nil, err
		}
		c.depth[acc.ID] = depth
	}
	return c, nil
}

// resolveDepth walks the parent chain iteratively. The walk is bounded by the
// account count, so a cycle is detected instead of looping forever.
func (c *Chart) resolveDepth(id int64) (int, error) {
	depth := 0
	current := id
	for steps := 0; ; steps++ {
		if steps > len(c.accounts) {
			return 0, fmt.Errorf("%w: cycle through account %d", ErrCorruptHierarchy, id)
		}
		acc := c.accounts[c.byID[current]]
		if acc.ParentID == nil {
			return depth, nil
		}
		current = *acc.ParentID
		depth++
	}
}

// Account returns the account for id.
func (c *Chart) Account(id int64) (Account, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return c.accounts[idx], nil
}

// NaturalSide returns the account's natural balance side.
func (c *Chart) NaturalSide(id int64) (Side, error) {
	acc, err := c.Account(id)
	if err != nil {
		return "", err
	}
	return acc.Side, nil
}

// Depth returns the hierarchy depth of the account; roots are level 0.
func (c *Chart) Depth(id int64) (int, error) {
	if _, ok := c.byID[id]; !ok {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return c.depth[id], nil
}

// DescendantLeafIDs resolves an account to every postable leaf underneath it,
// including the account itself when it is a leaf. The traversal uses an
// explicit stack; hierarchy depth does not grow the call stack.
func (c *Chart) DescendantLeafIDs(id int64) ([]int64, error) {
	root, err := c.Account(id)
	if err != nil {
		return nil, err
	}
	if root.IsLeaf {
		return []int64{root.ID}, nil
	}
	var leaves []int64
	stack := []int64{root.ID}
	visited := make(map[int64]struct{})
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			return nil, fmt.Errorf("%w: cycle through account %d", ErrCorruptHierarchy, current)
		}
		visited[current] = struct{}{}
		acc := c.accounts[c.byID[current]]
		if acc.IsLeaf {
			leaves = append(leaves, acc.ID)
			continue
		}
		stack = append(stack, c.children[current]...)
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i] < leaves[j] })
	return leaves, nil
}

// Ordered returns all accounts sorted by code ascending. The slice is shared
// with the snapshot and must not be mutated.
func (c *Chart) Ordered() []Account {
	return c.accounts
}

// Len returns the number of accounts in the snapshot.
func (c *Chart) Len() int {
	return len(c.accounts)
}
