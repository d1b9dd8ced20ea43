// Package pipeline holds the shared state and the stage contract of the
// generation run. Stages execute strictly sequentially; each stage is the sole
// writer of the table it owns while it runs.
package pipeline

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"ecomgen/internal/model"
)

// Context carries every intermediate artifact between stages as a named, typed
// slot. It replaces the untyped lookup cache the stages would otherwise have
// to share.
type Context struct {
	Rand  *rand.Rand
	Faker *gofakeit.Faker

	// Global simulation window; carts, orders and returns all live inside it.
	WindowStart time.Time
	WindowEnd   time.Time

	Customers []*model.Customer
	Products  []*model.Product

	Carts     []*model.Cart
	CartItems []*model.CartItem

	// ConvertedCarts is the funnel's output feeding order materialization,
	// ordered by created_at.
	ConvertedCarts []*model.Cart

	Orders     []*model.Order
	OrderItems []*model.OrderItem

	// CartOrder maps each converted cart to the order materialized from it.
	CartOrder map[string]string

	Returns     []*model.Return
	ReturnItems []*model.ReturnItem

	cartSeq       int
	orderSeq      int
	returnSeq     int
	cartItemSeq   int
	orderItemSeq  int
	returnItemSeq int
}

// NewContext seeds the shared random stream and the faker from one seed so a
// run is reproducible end to end.
func NewContext(seed int64, windowStart, windowEnd time.Time) *Context {
	return &Context{
		Rand:        rand.New(rand.NewSource(seed)),
		Faker:       gofakeit.New(uint64(seed)),
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}
}

// NextCartID issues the next monotonically increasing cart identifier.
func (c *Context) NextCartID() string {
	c.cartSeq++
	return fmt.Sprintf("CART-%08d", c.cartSeq)
}

func (c *Context) NextOrderID() string {
	c.orderSeq++
	return fmt.Sprintf("ORD-%08d", c.orderSeq)
}

func (c *Context) NextReturnID() string {
	c.returnSeq++
	return fmt.Sprintf("RET-%08d", c.returnSeq)
}

func (c *Context) NextCartItemID() int {
	c.cartItemSeq++
	return c.cartItemSeq
}

func (c *Context) NextOrderItemID() int {
	c.orderItemSeq++
	return c.orderItemSeq
}

func (c *Context) NextReturnItemID() int {
	c.returnItemSeq++
	return c.returnItemSeq
}

// CustomersByID builds an index over the customer pool.
func (c *Context) CustomersByID() map[string]*model.Customer {
	idx := make(map[string]*model.Customer, len(c.Customers))
	for _, cust := range c.Customers {
		idx[cust.CustomerID] = cust
	}
	return idx
}

// OrdersByID builds an index over the materialized orders.
func (c *Context) OrdersByID() map[string]*model.Order {
	idx := make(map[string]*model.Order, len(c.Orders))
	for _, o := range c.Orders {
		idx[o.OrderID] = o
	}
	return idx
}
