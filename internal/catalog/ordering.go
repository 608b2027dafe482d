// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "errors"

// Reorder rejections. The messages are returned to API clients verbatim.
var (
	ErrMismatchedSet    = errors.New("Mismatched product set")
	ErrInvalidProduct   = errors.New("Invalid product in order list")
	ErrDuplicateProduct = errors.New("Duplicate product in order list")
	ErrStaleOrder       = errors.New("Stale product order")
)

// ValidateReorder checks that ordered is exactly a permutation of current.
// It performs the size check first, then membership, then duplicates.
func ValidateReorder(current, ordered []int64) error {
	if len(ordered) != len(current) {
		return ErrMismatchedSet
	}

	members := make(map[int64]bool, len(current))
	for _, id := range current {
		members[id] = true
	}

	seen := make(map[int64]bool, len(ordered))
	for _, id := range ordered {
		if !members[id] {
			return ErrInvalidProduct
		}
		if seen[id] {
			return ErrDuplicateProduct
		}
		seen[id] = true
	}
	return nil
}

// NextSortOrder returns the position appended after the current maximum.
// valid is false for a category with no members.
func NextSortOrder(max int64, valid bool) int {
	if !valid {
		return 1
	}
	return int(max) + 1
}

// Positions assigns 1..N to the IDs in their given order.
func Positions(ordered []int64) map[int64]int {
	pos := make(map[int64]int, len(ordered))
	for i, id := range ordered {
		pos[id] = i + 1
	}
	return pos
}

// LinkChanges describes how a product's category links move on update.
type LinkChanges struct {
	// Append lists categories the product must be appended to, in order.
	Append []int64
	// Remove lists categories the product leaves.
	Remove []int64
	// PrimaryChanged is set when the primary category differs.
	PrimaryChanged bool
}

// DiffLinks compares a product's old and new category links. Newly added
// categories are appended. When the primary category changes, the new
// primary is appended too even if the product was already linked to it as a
// secondary category. Categories the product stays in keep their position,
// and categories it leaves are not renumbered.
func DiffLinks(oldPrimary *int64, oldIDs []int64, newPrimary *int64, newIDs []int64) LinkChanges {
	var ch LinkChanges

	had := make(map[int64]bool, len(oldIDs))
	for _, id := range oldIDs {
		had[id] = true
	}
	keep := make(map[int64]bool, len(newIDs))
	for _, id := range newIDs {
		keep[id] = true
	}

	ch.PrimaryChanged = !sameID(oldPrimary, newPrimary)

	appended := make(map[int64]bool)
	if ch.PrimaryChanged && newPrimary != nil {
		ch.Append = append(ch.Append, *newPrimary)
		appended[*newPrimary] = true
	}
	for _, id := range newIDs {
		if !had[id] && !appended[id] {
			ch.Append = append(ch.Append, id)
			appended[id] = true
		}
	}
	for _, id := range oldIDs {
		if !keep[id] {
			ch.Remove = append(ch.Remove, id)
		}
	}
	return ch
}

// NormalizeLinks merges a primary category into a category list, putting
// the primary first and dropping duplicates and non-positive IDs.
func NormalizeLinks(primary *int64, ids []int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	seen := make(map[int64]bool, len(ids)+1)
	if primary != nil && *primary > 0 {
		out = append(out, *primary)
		seen[*primary] = true
	}
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		out = append(out, id)
		seen[id] = true
	}
	return out
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
