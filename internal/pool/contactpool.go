package pool

import (
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"

	"ecomgen/internal/randx"
)

// Contact is one reusable guest identity (email plus addresses).
type Contact struct {
	Email          string
	MailingAddress string
	BillingAddress string
}

// ContactPool is the bounded cache of guest contact identities. Reusing
// entries makes some guests show up repeatedly under the same email, which is
// what real guest checkout data looks like. The pool is explicitly owned by
// the customer pool builder; nothing about it is process-wide.
type ContactPool struct {
	size    int
	entries []Contact
}

func NewContactPool(size int) *ContactPool {
	if size < 1 {
		size = 1
	}
	return &ContactPool{size: size}
}

// Fill tops the pool up to its configured size with fresh identities.
func (p *ContactPool) Fill(f *gofakeit.Faker) {
	for len(p.entries) < p.size {
		addr := fakeAddress(f)
		p.entries = append(p.entries, Contact{
			Email:          f.Email(),
			MailingAddress: addr,
			BillingAddress: addr,
		})
	}
}

// Pick returns a uniformly drawn existing entry.
func (p *ContactPool) Pick(rng *rand.Rand) Contact {
	return randx.Choice(rng, p.entries)
}

// Add appends a fresh identity, evicting the oldest entry once the pool is
// over capacity.
func (p *ContactPool) Add(c Contact) {
	p.entries = append(p.entries, c)
	if len(p.entries) > p.size {
		p.entries = p.entries[1:]
	}
}

// Len reports the current number of cached identities.
func (p *ContactPool) Len() int {
	return len(p.entries)
}
