// Package pricing quotes cleaning jobs from a static rate card.
package pricing

import (
	"fmt"
	"sort"

	"cleaning-booking-be/internal/entity"

	"github.com/shopspring/decimal"
)

type ServiceRate struct {
	Base        decimal.Decimal
	PerBedroom  decimal.Decimal
	PerBathroom decimal.Decimal
}

type RateCard struct {
	Services map[string]ServiceRate
	Extras   map[string]decimal.Decimal
	// FrequencyDiscount is a percentage off base+extras.
	FrequencyDiscount map[entity.BookingFrequency]decimal.Decimal
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func DefaultRateCard() *RateCard {
	return &RateCard{
		Services: map[string]ServiceRate{
			"standard":     {Base: d("80"), PerBedroom: d("20"), PerBathroom: d("25")},
			"deep":         {Base: d("150"), PerBedroom: d("35"), PerBathroom: d("40")},
			"end_of_lease": {Base: d("220"), PerBedroom: d("45"), PerBathroom: d("50")},
			"office":       {Base: d("120"), PerBedroom: d("0"), PerBathroom: d("30")},
		},
		Extras: map[string]decimal.Decimal{
			"oven":           d("45"),
			"fridge":         d("30"),
			"windows":        d("40"),
			"balcony":        d("25"),
			"laundry":        d("20"),
			"carpet":         d("60"),
			"wall_wash":      d("50"),
			"cabinets":       d("35"),
			"garage":         d("40"),
			"blinds":         d("30"),
			"dishes":         d("15"),
			"bed_linen":      d("15"),
			"pet_hair":       d("25"),
			"range_hood":     d("25"),
			"microwave":      d("10"),
			"organisation":   d("50"),
			"skirting":       d("30"),
			"light_fixtures": d("20"),
		},
		FrequencyDiscount: map[entity.BookingFrequency]decimal.Decimal{
			entity.FrequencyOneTime:     d("0"),
			entity.FrequencyWeekly:      d("15"),
			entity.FrequencyFortnightly: d("10"),
			entity.FrequencyMonthly:     d("5"),
		},
	}
}

type Request struct {
	ServiceType string
	Frequency   entity.BookingFrequency
	Bedrooms    int
	Bathrooms   int
	Extras      []string
}

type Quote struct {
	BasePrice         decimal.Decimal
	ExtrasPrice       decimal.Decimal
	FrequencyDiscount decimal.Decimal
	// Subtotal is base + extras - frequency discount.
	Subtotal decimal.Decimal
}

func (c *RateCard) ServiceTypes() []string {
	out := make([]string, 0, len(c.Services))
	for k := range c.Services {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *RateCard) Quote(req Request) (*Quote, error) {
	rate, ok := c.Services[req.ServiceType]
	if !ok {
		return nil, fmt.Errorf("unknown service type %q", req.ServiceType)
	}
	discountPct, ok := c.FrequencyDiscount[req.Frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency %q", req.Frequency)
	}
	if req.Bedrooms < 0 || req.Bathrooms < 0 {
		return nil, fmt.Errorf("room counts must not be negative")
	}

	base := rate.Base.
		Add(rate.PerBedroom.Mul(decimal.NewFromInt(int64(req.Bedrooms)))).
		Add(rate.PerBathroom.Mul(decimal.NewFromInt(int64(req.Bathrooms))))

	extras := decimal.Zero
	seen := make(map[string]bool, len(req.Extras))
	for _, e := range req.Extras {
		if seen[e] {
			continue
		}
		seen[e] = true
		price, ok := c.Extras[e]
		if !ok {
			return nil, fmt.Errorf("unknown extra %q", e)
		}
		extras = extras.Add(price)
	}

	gross := base.Add(extras)
	freq := gross.Mul(discountPct).Div(decimal.NewFromInt(100)).Round(2)

	return &Quote{
		BasePrice:         base.Round(2),
		ExtrasPrice:       extras.Round(2),
		FrequencyDiscount: freq,
		Subtotal:          gross.Sub(freq).Round(2),
	}, nil
}
