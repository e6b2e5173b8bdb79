// Package permissions turns the flat navigation table into the sidebar tree and derives the
// routes a role may see from its permission rows.
package permissions

import (
	"sort"

	"go-ticket-pos/internal/models"
)

// BuildTree nests navigations under their parents. Rows whose parent is not in the list are
// treated as roots. Siblings are ordered by sort_order, then id.
func BuildTree(navs []models.Navigation) []models.Navigation {
	byParent := make(map[uint][]models.Navigation)
	known := make(map[uint]bool, len(navs))
	for _, n := range navs {
		known[n.ID] = true
	}

	var roots []models.Navigation
	for _, n := range navs {
		n.Children = nil
		if n.ParentID == nil || !known[*n.ParentID] || *n.ParentID == n.ID {
			roots = append(roots, n)
			continue
		}
		byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
	}

	var attach func(nodes []models.Navigation, seen map[uint]bool) []models.Navigation
	attach = func(nodes []models.Navigation, seen map[uint]bool) []models.Navigation {
		sortSiblings(nodes)
		for i := range nodes {
			if seen[nodes[i].ID] {
				continue
			}
			seen[nodes[i].ID] = true
			nodes[i].Children = attach(byParent[nodes[i].ID], seen)
		}
		return nodes
	}

	return attach(roots, map[uint]bool{})
}

func sortSiblings(nodes []models.Navigation) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// FlatNavigation is one row of the dropdown listing, indented by depth.
type FlatNavigation struct {
	ID       uint   `json:"id"`
	ParentID *uint  `json:"parent_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Depth    int    `json:"depth"`
}

// Flatten walks the tree depth-first for TreeDropdown.
func Flatten(tree []models.Navigation) []FlatNavigation {
	out := []FlatNavigation{}
	var walk func(nodes []models.Navigation, depth int)
	walk = func(nodes []models.Navigation, depth int) {
		for _, n := range nodes {
			out = append(out, FlatNavigation{ID: n.ID, ParentID: n.ParentID, Name: n.Name, Slug: n.Slug, Depth: depth})
			walk(n.Children, depth+1)
		}
	}
	walk(tree, 0)
	return out
}

// WouldCycle reports whether making parentID the parent of id would put id among its own
// ancestors. navs is the full flat table.
func WouldCycle(navs []models.Navigation, id, parentID uint) bool {
	if id == parentID {
		return true
	}
	parents := make(map[uint]*uint, len(navs))
	for _, n := range navs {
		parents[n.ID] = n.ParentID
	}

	seen := map[uint]bool{}
	current := parentID
	for {
		if current == id {
			return true
		}
		if seen[current] {
			return false
		}
		seen[current] = true
		p, ok := parents[current]
		if !ok || p == nil {
			return false
		}
		current = *p
	}
}
