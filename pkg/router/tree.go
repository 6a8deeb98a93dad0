package router

import (
	"fmt"
	"sort"
	"strings"
)

// NodeID indexes a RouteNode inside its Tree.
type NodeID int

const NoNode NodeID = -1

type SubRouter struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	MountPath  string `json:"mountPath" yaml:"mountPath"`
}

// RouteNode is one directory of the app subtree. Parent is a lookup index,
// the Tree owns every node.
type RouteNode struct {
	ID              NodeID
	Name            string
	RelativePath    string
	RouteFile       string
	MiddlewaresFile string
	Children        []NodeID
	Parent          NodeID

	// SubRouter is assigned by the compiler, never by resolution.
	SubRouter *SubRouter

	routeRank       int
	middlewaresRank int
}

func (n *RouteNode) IsVirtualGroup() bool {
	return len(n.Name) >= 2 && strings.HasPrefix(n.Name, "(") && strings.HasSuffix(n.Name, ")")
}

// Tree is an arena of RouteNodes rooted at index 0.
type Tree struct {
	Nodes  []*RouteNode
	byPath map[string]NodeID
}

func NewTree(rootName string) *Tree {
	t := &Tree{byPath: make(map[string]NodeID)}
	t.add(NoNode, rootName, rootName)
	return t
}

func (t *Tree) Root() *RouteNode {
	return t.Nodes[0]
}

func (t *Tree) Node(id NodeID) *RouteNode {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[id]
}

// Lookup returns the node whose relative path is rel.
func (t *Tree) Lookup(rel string) (*RouteNode, bool) {
	id, ok := t.byPath[rel]
	if !ok {
		return nil, false
	}
	return t.Nodes[id], true
}

func (t *Tree) add(parent NodeID, name, rel string) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, &RouteNode{
		ID:              id,
		Name:            name,
		RelativePath:    rel,
		Parent:          parent,
		routeRank:       -1,
		middlewaresRank: -1,
	})
	t.byPath[rel] = id
	if p := t.Node(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Sort orders every child list case-insensitively by name. Ties keep scan
// order.
func (t *Tree) Sort() {
	for _, n := range t.Nodes {
		children := n.Children
		sort.SliceStable(children, func(i, j int) bool {
			return strings.ToLower(t.Nodes[children[i]].Name) < strings.ToLower(t.Nodes[children[j]].Name)
		})
	}
}

// Walk visits nodes in pre-order, each node before its children. A non-nil
// error from fn stops the walk.
func (t *Tree) Walk(fn func(n *RouteNode) error) error {
	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		n := t.Nodes[id]
		if err := fn(n); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(0)
}

// NearestSubRouter chases parent indices from id upward, the node itself
// included, and returns the first recorded sub-router.
func (t *Tree) NearestSubRouter(id NodeID) *SubRouter {
	for n := t.Node(id); n != nil; n = t.Node(n.Parent) {
		if n.SubRouter != nil {
			return n.SubRouter
		}
	}
	return nil
}

// Len is the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

func (t *Tree) String() string {
	var sb strings.Builder
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		n := t.Nodes[id]
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Name)
		var files []string
		if n.MiddlewaresFile != "" {
			files = append(files, n.MiddlewaresFile)
		}
		if n.RouteFile != "" {
			files = append(files, n.RouteFile)
		}
		if len(files) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", strings.Join(files, ", ")))
		}
		sb.WriteString("\n")
		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	visit(0, 0)
	return sb.String()
}
