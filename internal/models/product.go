// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
)

// Product is a catalog item. Category membership lives in the
// product_categories join table; PrimaryCategoryID and CategoryIDs are
// filled in from it by the store.
type Product struct {
	ID            int64      `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	DescriptionMD string     `json:"descriptionMd"`
	PriceCents    int        `json:"priceCents"`
	SoldAt        *time.Time `json:"soldAt"`
	IsRecreatable bool       `json:"isRecreatable"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	PrimaryCategoryID *int64  `json:"categoryId"`
	CategoryIDs       []int64 `json:"categoryIds"`

	// Virtual fields populated by listing queries.
	SortOrder     int    `json:"sortOrder,omitempty"`
	ThumbnailPath string `json:"imagePath,omitempty"`
}

// IsSold reports whether the product has been sold.
func (p *Product) IsSold() bool {
	return p.SoldAt != nil
}

// IsOrderable reports whether a customer can still place an order: either
// the piece is unsold, or it is sold but can be made again.
func (p *Product) IsOrderable() bool {
	return !p.IsSold() || p.IsRecreatable
}

// ProductImage is one picture in a product gallery. At most one image per
// product carries IsThumbnail.
type ProductImage struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	ImagePath   string    `json:"imagePath"`
	IsThumbnail bool      `json:"isThumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryProduct is the compact row shown in the admin reorder dialog.
type CategoryProduct struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	SortOrder int     `json:"sortOrder"`
	ImagePath *string `json:"imagePath"`
}
