// Package costs keeps named cost line items per funnel category and folds
// them into the category totals that feed moneymodel.FunnelInputs.
package costs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/money-model/internal/moneymodel"
)

// Category groups line items that sum into one FunnelInputs field.
type Category string

const (
	CategorySales      Category = "sales"
	CategoryOverhead   Category = "overhead"
	CategoryAttraction Category = "attraction"
	CategoryUpsell     Category = "upsell"
	CategoryDownsell   Category = "downsell"
	CategoryContinuity Category = "continuity"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategorySales,
	CategoryAttraction,
	CategoryUpsell,
	CategoryDownsell,
	CategoryContinuity,
	CategoryOverhead,
}

var (
	ErrItemNotFound    = errors.New("cost item not found")
	ErrInvalidItem     = errors.New("invalid cost item")
	ErrUnknownCategory = errors.New("unknown cost category")
)

// ParseCategory validates a raw category name.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
}

// Item is a single named cost.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Amount      float64  `json:"amount"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}

// Validate rejects items without a name or a positive amount.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if !(it.Amount > 0) {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidItem)
	}
	if _, err := ParseCategory(string(it.Category)); err != nil {
		return err
	}
	return nil
}

// Breakdown holds ordered line items per category. The zero value is empty
// and ready to use.
type Breakdown struct {
	items map[Category][]Item
}

// NewBreakdown builds a breakdown from existing items, keeping their order.
func NewBreakdown(items []Item) (*Breakdown, error) {
	b := &Breakdown{}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		b.append(it)
	}
	return b, nil
}

func (b *Breakdown) append(it Item) {
	if b.items == nil {
		b.items = make(map[Category][]Item)
	}
	b.items[it.Category] = append(b.items[it.Category], it)
}

// Add appends an item to its category and returns it with a fresh ID.
func (b *Breakdown) Add(it Item) (Item, error) {
	it.Name = strings.TrimSpace(it.Name)
	it.Description = strings.TrimSpace(it.Description)
	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	it.ID = uuid.NewString()
	b.append(it)
	return it, nil
}

// Update replaces name, amount and description of the item with id. The item
// keeps its category and position.
func (b *Breakdown) Update(id string, upd Item) (Item, error) {
	for c, list := range b.items {
		for i := range list {
			if list[i].ID != id {
				continue
			}
			next := list[i]
			next.Name = strings.TrimSpace(upd.Name)
			next.Amount = upd.Amount
			next.Description = strings.TrimSpace(upd.Description)
			if err := next.Validate(); err != nil {
				return Item{}, err
			}
			b.items[c][i] = next
			return next, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Remove deletes the item with id.
func (b *Breakdown) Remove(id string) error {
	for c, list := range b.items {
		for i := range list {
			if list[i].ID == id {
				b.items[c] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Items returns a copy of the items in category c.
func (b *Breakdown) Items(c Category) []Item {
	out := make([]Item, len(b.items[c]))
	copy(out, b.items[c])
	return out
}

// All returns every item, grouped in Categories order.
func (b *Breakdown) All() []Item {
	var out []Item
	for _, c := range Categories {
		out = append(out, b.items[c]...)
	}
	return out
}

// Total sums the amounts in category c.
func (b *Breakdown) Total(c Category) float64 {
	var sum float64
	for _, it := range b.items[c] {
		sum += it.Amount
	}
	return sum
}

// Apply overwrites the cost fields of in with the category totals. Ad spend,
// revenues and take rates are left as they are.
func (b *Breakdown) Apply(in moneymodel.FunnelInputs) moneymodel.FunnelInputs {
	in.SalesCosts = b.Total(CategorySales)
	in.OverheadAllocation = b.Total(CategoryOverhead)
	in.AttractionOfferCosts = b.Total(CategoryAttraction)
	in.UpsellCosts = b.Total(CategoryUpsell)
	in.DownsellCosts = b.Total(CategoryDownsell)
	in.ContinuityCosts = b.Total(CategoryContinuity)
	return in
}
