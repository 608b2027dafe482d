// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

func productIDs(items []models.Product) []int64 {
	ids := make([]int64, len(items))
	for i, p := range items {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMembershipAppendOnCreate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	m := NewMembershipStore(db)

	a := testCategory(t, db, "Append", nil)
	p1 := testProduct(t, db, "first", a.ID)
	p2 := testProduct(t, db, "second", a.ID)

	items, _, err := m.CategoryProducts(ctx, a.ID)
	if err != nil {
		t.Fatalf("CategoryProducts: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d products, want 2", len(items))
	}
	if items[0].ID != p1.ID || items[0].SortOrder != 1 {
		t.Errorf("first: got id=%d order=%d, want id=%d order=1", items[0].ID, items[0].SortOrder, p1.ID)
	}
	if items[1].ID != p2.ID || items[1].SortOrder != 2 {
		t.Errorf("second: got id=%d order=%d, want id=%d order=2", items[1].ID, items[1].SortOrder, p2.ID)
	}
}

func TestMembershipAppendAfterMax(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := testCategory(t, db, "Max five", nil)
	p := testProduct(t, db, "existing", a.ID)
	if _, err := db.Exec(`UPDATE product_categories SET sort_order = 5 WHERE product_id = $1`, p.ID); err != nil {
		t.Fatalf("set sort order: %v", err)
	}

	created := testProduct(t, db, "new", a.ID)

	var got int
	err := db.QueryRowContext(ctx,
		`SELECT sort_order FROM product_categories WHERE product_id = $1 AND category_id = $2`,
		created.ID, a.ID,
	).Scan(&got)
	if err != nil {
		t.Fatalf("read sort order: %v", err)
	}
	if got != 6 {
		t.Errorf("sort order: got %d, want 6", got)
	}
}

func TestMembershipReorder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	m := NewMembershipStore(db)

	a := testCategory(t, db, "Reorder", nil)
	p1 := testProduct(t, db, "P1", a.ID)
	p2 := testProduct(t, db, "P2", a.ID)
	p3 := testProduct(t, db, "P3", a.ID)

	_, before, err := m.CategoryProducts(ctx, a.ID)
	if err != nil {
		t.Fatalf("CategoryProducts: %v", err)
	}

	version, err := m.Reorder(ctx, a.ID, []int64{p3.ID, p1.ID, p2.ID}, &before)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if version != before+1 {
		t.Errorf("version: got %d, want %d", version, before+1)
	}

	items, err := m.MembersOf(ctx, []int64{a.ID}, MemberFilter{})
	if err != nil {
		t.Fatalf("MembersOf: %v", err)
	}
	want := []int64{p3.ID, p1.ID, p2.ID}
	if !equalIDs(productIDs(items), want) {
		t.Errorf("order: got %v, want %v", productIDs(items), want)
	}
	for i, p := range items {
		if p.SortOrder != i+1 {
			t.Errorf("product %d: sort order %d, want %d", p.ID, p.SortOrder, i+1)
		}
	}

	// The old version is now stale.
	if _, err := m.Reorder(ctx, a.ID, want, &before); !errors.Is(err, catalog.ErrStaleOrder) {
		t.Errorf("stale reorder: got %v, want ErrStaleOrder", err)
	}
}

func TestMembershipReorderRejectsWithoutWrites(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	m := NewMembershipStore(db)

	a := testCategory(t, db, "Reject", nil)
	p1 := testProduct(t, db, "P1", a.ID)
	p2 := testProduct(t, db, "P2", a.ID)
	stranger := testProduct(t, db, "stranger")

	tests := []struct {
		name    string
		ordered []int64
		want    error
	}{
		{"short list", []int64{p2.ID}, catalog.ErrMismatchedSet},
		{"foreign product", []int64{p2.ID, stranger.ID}, catalog.ErrInvalidProduct},
		{"duplicate", []int64{p2.ID, p2.ID}, catalog.ErrDuplicateProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Reorder(ctx, a.ID, tt.ordered, nil); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			items, _, err := m.CategoryProducts(ctx, a.ID)
			if err != nil {
				t.Fatalf("CategoryProducts: %v", err)
			}
			if items[0].ID != p1.ID || items[0].SortOrder != 1 || items[1].SortOrder != 2 {
				t.Errorf("order changed after rejected reorder: %+v", items)
			}
		})
	}
}

func TestMembershipReorderUnknownCategory(t *testing.T) {
	db := testDB(t)
	m := NewMembershipStore(db)

	if _, err := m.Reorder(context.Background(), -1, []int64{1}, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMembersOfScopeAndSoldFilter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	m := NewMembershipStore(db)

	parent := testCategory(t, db, "Parent", nil)
	child := testCategory(t, db, "Child", &parent.ID)
	grandchild := testCategory(t, db, "Grandchild", &child.ID)

	inParent := testProduct(t, db, "in parent", parent.ID)
	inBoth := testProduct(t, db, "in both", child.ID, parent.ID)
	deep := testProduct(t, db, "deep", grandchild.ID)
	sold := testProduct(t, db, "sold", child.ID)
	if _, err := db.Exec(`UPDATE products SET sold_at = NOW() WHERE id = $1`, sold.ID); err != nil {
		t.Fatalf("mark sold: %v", err)
	}

	cats, err := NewCategoryStore(db).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	scope := catalog.ResolveScope(parent.ID, "", cats)

	all, err := m.MembersOf(ctx, scope, MemberFilter{})
	if err != nil {
		t.Fatalf("MembersOf: %v", err)
	}
	seen := make(map[int64]int)
	for _, p := range all {
		seen[p.ID]++
	}
	if seen[inParent.ID] != 1 || seen[inBoth.ID] != 1 || seen[sold.ID] != 1 {
		t.Errorf("expected each in-scope product exactly once, got %v", seen)
	}
	if seen[deep.ID] != 0 {
		t.Error("grandchild products must not be in scope")
	}

	available, err := m.MembersOf(ctx, scope, MemberFilter{ExcludeSold: true})
	if err != nil {
		t.Fatalf("MembersOf: %v", err)
	}
	for _, p := range available {
		if p.ID == sold.ID {
			t.Error("sold one-off product should be excluded")
		}
	}
}
