// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the storage-free rules of the product catalog: the
// category hierarchy (depth, picker ordering, listing scope, cycle checks)
// and the validation half of per-category product ordering. The store
// package applies these rules inside database transactions.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/models"
)

// MaxDepth caps every upward walk of the parent chain.
const MaxDepth = 10

// Parents maps a category ID to its parent ID (nil for roots).
type Parents map[int64]*int64

// ParentsOf builds the parent map for a set of categories.
func ParentsOf(cats []models.Category) Parents {
	p := make(Parents, len(cats))
	for _, c := range cats {
		p[c.ID] = c.ParentID
	}
	return p
}

// ComputeDepth returns the number of parent hops from id to its nearest
// root. The walk stops at a root, at a parent that is not in the map, on
// revisiting a node, or after MaxDepth hops, so it terminates on any input.
func ComputeDepth(id int64, parents Parents) int {
	depth := 0
	seen := make(map[int64]bool)
	current := parents[id]
	for current != nil && !seen[*current] && depth < MaxDepth {
		depth++
		seen[*current] = true
		current = parents[*current]
	}
	return depth
}

// ListForPicker returns the categories that may become the parent of
// excludeID, each annotated with Depth and ordered by depth, then title
// (case-insensitive), then ID. Pass excludeID 0 when creating a category.
// The input slice is not modified.
func ListForPicker(excludeID int64, cats []models.Category) []models.Category {
	parents := ParentsOf(cats)

	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if c.ID == excludeID {
			continue
		}
		c.Depth = ComputeDepth(c.ID, parents)
		c.Children = nil
		out = append(out, c)
	}

	col := collate.New(language.Slovak, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if cmp := col.CompareString(a.Title, b.Title); cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
	return out
}

// ResolveScope returns the category IDs whose products are listed together
// on a category page. A subcategory filter that parses to a positive integer
// narrows the scope to that category alone; otherwise the scope is the
// category plus its direct children (grandchildren are not included).
// Malformed filters are ignored.
func ResolveScope(categoryID int64, subcategoryFilter string, cats []models.Category) []int64 {
	if f := strings.TrimSpace(subcategoryFilter); f != "" {
		if sub, err := strconv.ParseInt(f, 10, 64); err == nil && sub > 0 {
			return []int64{sub}
		}
	}

	scope := []int64{categoryID}
	for _, c := range cats {
		if c.ParentID != nil && *c.ParentID == categoryID && c.ID != categoryID {
			scope = append(scope, c.ID)
		}
	}
	return scope
}

// WouldCreateCycle reports whether giving category id the parent newParent
// would make it its own ancestor. A nil newParent never creates a cycle.
func WouldCreateCycle(id int64, newParent *int64, parents Parents) bool {
	if newParent == nil {
		return false
	}
	seen := make(map[int64]bool)
	for current := newParent; current != nil; current = parents[*current] {
		if *current == id {
			return true
		}
		if seen[*current] {
			// Existing loop that does not pass through id.
			return false
		}
		seen[*current] = true
	}
	return false
}

// Partition splits categories into roots and a parent ID → children index,
// both keeping the input order.
func Partition(cats []models.Category) (roots []models.Category, children map[int64][]models.Category) {
	known := make(map[int64]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}

	children = make(map[int64][]models.Category)
	for _, c := range cats {
		if c.ParentID == nil || !known[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	return roots, children
}

// BuildTree nests categories under their parents with Depth set. Categories
// whose parent is missing are treated as roots; nodes on a parent loop that
// never reaches a root are left out.
func BuildTree(cats []models.Category) []models.Category {
	roots, children := Partition(cats)
	return attach(roots, children, 0)
}

func attach(nodes []models.Category, children map[int64][]models.Category, depth int) []models.Category {
	if len(nodes) == 0 || depth > MaxDepth {
		return nil
	}
	out := make([]models.Category, len(nodes))
	for i, c := range nodes {
		c.Depth = depth
		c.Children = attach(children[c.ID], children, depth+1)
		out[i] = c
	}
	return out
}

// Flatten walks a tree depth-first, returning every node in display order.
func Flatten(tree []models.Category) []models.Category {
	var out []models.Category
	var walk func([]models.Category)
	walk = func(nodes []models.Category) {
		for _, c := range nodes {
			out = append(out, c)
			walk(c.Children)
		}
	}
	walk(tree)
	return out
}
