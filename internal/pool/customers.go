// Package pool builds the static universe the simulation draws from: the
// customer pool (regular and guest shoppers) and the product catalog.
package pool

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"ecomgen/internal/config"
	"ecomgen/internal/model"
	"ecomgen/internal/pipeline"
	"ecomgen/internal/randx"
)

var genders = []string{"Male", "Female", "Non-binary"}

const guestIDStart = 100000

// CustomerStage generates the customer pool: regular customers first
// (CUST-####), then guest shoppers (GUEST-#####). Guests carry no signup date,
// channel, tier or CLV bucket at creation.
type CustomerStage struct{}

func (CustomerStage) Table() string { return model.TableCustomers }

func (CustomerStage) Generate(ctx *pipeline.Context, cfg *config.Config) error {
	cc := cfg.Customers
	numRegular := int(float64(cc.Count) * (1 - cc.GuestPct))
	numGuests := cc.Count - numRegular

	customers := make([]*model.Customer, 0, cc.Count)
	signupStart := cfg.SignupStart()

	for i := 0; i < numRegular; i++ {
		first := ctx.Faker.FirstName()
		last := ctx.Faker.LastName()

		gender := "Unknown"
		if !randx.Bernoulli(ctx.Rand, cc.GenderUnknownProb) {
			gender = randx.Choice(ctx.Rand, genders)
		}

		signupDate := randx.DateBetween(ctx.Rand, signupStart, ctx.WindowEnd)

		channel, err := randx.WeightedChoice(ctx.Rand, cc.SignupChannelDist)
		if err != nil {
			return fmt.Errorf("signup channel: %w", err)
		}

		tier := ""
		if !randx.Bernoulli(ctx.Rand, cc.NoTierProbability) {
			tier, err = drawLoyaltyTier(ctx, cfg, channel)
			if err != nil {
				return err
			}
		}

		status, err := randx.WeightedChoice(ctx.Rand, cc.StatusProbs)
		if err != nil {
			return fmt.Errorf("customer status: %w", err)
		}

		address := fakeAddress(ctx.Faker)
		cust := &model.Customer{
			CustomerID:         fmt.Sprintf("CUST-%04d", cc.IDStart+i),
			FirstName:          first,
			LastName:           last,
			Email:              fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), ctx.Faker.DomainName()),
			PhoneNumber:        ctx.Faker.Phone(),
			Age:                randx.IntBetween(ctx.Rand, cc.MinAge, cc.MaxAge),
			Gender:             gender,
			LoyaltyTier:        tier,
			InitialLoyaltyTier: tier,
			SignupDate:         signupDate,
			CustomerStatus:     status,
			EmailVerified:      randx.Bernoulli(ctx.Rand, cc.EmailVerifiedProb),
			MarketingOptIn:     randx.Bernoulli(ctx.Rand, cc.MarketingOptInProb),
			SignupChannel:      channel,
			MailingAddress:     address,
			BillingAddress:     address,
			CLVBucket:          clvForTier(cfg, tier),
			IsGuest:            false,
		}
		if tier != "" {
			cust.LoyaltyEnrollDate = randx.DateBetween(ctx.Rand, signupDate, ctx.WindowEnd)
		}
		customers = append(customers, cust)
	}

	contacts := NewContactPool(cc.GuestContactPoolSize)
	contacts.Fill(ctx.Faker)

	for i := 0; i < numGuests; i++ {
		var contact Contact
		if randx.Bernoulli(ctx.Rand, cc.GuestContactReuseProb) {
			contact = contacts.Pick(ctx.Rand)
		} else {
			addr := fakeAddress(ctx.Faker)
			contact = Contact{Email: ctx.Faker.Email(), MailingAddress: addr, BillingAddress: addr}
			contacts.Add(contact)
		}

		customers = append(customers, &model.Customer{
			CustomerID:     fmt.Sprintf("GUEST-%05d", guestIDStart+i),
			Email:          contact.Email,
			CustomerStatus: "Guest",
			MailingAddress: contact.MailingAddress,
			BillingAddress: contact.BillingAddress,
			IsGuest:        true,
		})
	}

	ctx.Customers = customers
	return nil
}

func drawLoyaltyTier(ctx *pipeline.Context, cfg *config.Config, channel string) (string, error) {
	dist, ok := cfg.Customers.LoyaltyDistByChannel[channel]
	if !ok {
		dist = cfg.Customers.LoyaltyDistByChannel[config.SegmentDefault]
	}
	if len(dist) == len(cfg.Tiers.LoyaltyTiers) {
		return randx.WeightedChoice(ctx.Rand, dist)
	}
	// Missing or malformed distribution degrades to a uniform draw.
	return randx.Choice(ctx.Rand, cfg.Tiers.LoyaltyTiers), nil
}

func clvForTier(cfg *config.Config, tier string) string {
	if bucket, ok := cfg.Tiers.CLVMap[tier]; ok {
		return bucket
	}
	return "Low"
}

func fakeAddress(f *gofakeit.Faker) string {
	a := f.Address()
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.Zip)
}
