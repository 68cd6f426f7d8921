// Package pricing values loot and produced items for profit figures.
package pricing

import "strings"

const (
	defaultItemPrice    = 0
	defaultCostPerPoint = 2.5
)

// Option applies a configuration option to the Book.
type Option func(*Book)

// WithPricesFromConfig sets item prices from a configuration map. Names are
// matched case-insensitively; non-positive prices are ignored.
func WithPricesFromConfig(prices map[string]float64, defaultPrice float64) Option {
	return func(b *Book) {
		b.prices = make(map[string]float64, len(prices))
		for name, p := range prices {
			if p > 0 {
				b.prices[normalize(name)] = p
			}
		}
		if defaultPrice >= 0 {
			b.defaultPrice = defaultPrice
		}
	}
}

// WithCostPerDamagePoint sets what one point of received damage costs in
// healing supplies.
func WithCostPerDamagePoint(cost float64) Option {
	return func(b *Book) {
		if cost >= 0 {
			b.costPerPoint = cost
		}
	}
}

// Book is a read-only price table.
type Book struct {
	prices       map[string]float64
	defaultPrice float64
	costPerPoint float64
}

// NewBook creates a price book with configuration options.
func NewBook(opts ...Option) *Book {
	b := &Book{
		prices:       make(map[string]float64),
		defaultPrice: defaultItemPrice,
		costPerPoint: defaultCostPerPoint,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Price returns the unit price of item.
func (b *Book) Price(item string) float64 {
	if p, ok := b.prices[normalize(item)]; ok {
		return p
	}
	return b.defaultPrice
}

// Value returns the price of quantity units of item.
func (b *Book) Value(item string, quantity int64) float64 {
	return b.Price(item) * float64(quantity)
}

// DamageCost returns the healing cost of the given damage received.
func (b *Book) DamageCost(damage int64) float64 {
	return float64(damage) * b.costPerPoint
}

// CostPerPoint returns the configured cost of one damage point.
func (b *Book) CostPerPoint() float64 { return b.costPerPoint }

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
