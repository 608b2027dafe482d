// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
)

// Category is a node in the product category tree. A nil ParentID marks a
// root category.
type Category struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	ParentID          *int64    `json:"parentId"`
	MembershipVersion int64     `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// Virtual fields populated by store and catalog functions.
	Children     []Category `json:"children,omitempty"`
	Depth        int        `json:"depth"`
	ProductCount int        `json:"productCount,omitempty"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
