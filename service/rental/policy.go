package rental

import (
	"math"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/config"
)

// Promotion decides what the head of the queue receives when a book frees up.
type Promotion string

const (
	// PromoteRent opens a rental for the head right away.
	PromoteRent Promotion = "rent"
	// PromoteHold reserves the book for the head until the hold expires.
	PromoteHold Promotion = "hold"
)

// Pricer prices rentals and late returns in coins, and the credit a
// depositor earns for a new book.
type Pricer interface {
	Rent(days int) int
	Penalty(lateDays int) int
	Deposit() int
}

type timePricing struct{ rate, penalty, deposit int }

func (p timePricing) Rent(days int) int        { return days * p.rate }
func (p timePricing) Penalty(lateDays int) int { return lateDays * p.penalty }
func (p timePricing) Deposit() int             { return p.deposit }

// recurrenceDepositBonus is added to every deposit credit under recurrence pricing.
const recurrenceDepositBonus = 5

// recurrencePricing gives returning members 10% off the rent and depositors
// a bonus.
type recurrencePricing struct{ timePricing }

func (p recurrencePricing) Rent(days int) int {
	return int(math.Round(float64(p.timePricing.Rent(days)) * 0.9))
}

func (p recurrencePricing) Deposit() int { return p.timePricing.Deposit() + recurrenceDepositBonus }

func NewPricer(kind string, ratePerDay, penaltyPerDay, depositCoins int) Pricer {
	base := timePricing{rate: ratePerDay, penalty: penaltyPerDay, deposit: depositCoins}
	if kind == "recurrence" {
		return recurrencePricing{base}
	}
	return base
}

type Policy struct {
	LoanPeriod           time.Duration
	HoldPeriod           time.Duration
	Promotion            Promotion
	Pricing              Pricer
	AllowDepositorRental bool
}

func PolicyFrom(c config.Lending) Policy {
	return Policy{
		LoanPeriod:           c.LoanPeriod,
		HoldPeriod:           c.HoldPeriod,
		Promotion:            Promotion(c.Promotion),
		Pricing:              NewPricer(c.Pricing, c.RentCoinsPerDay, c.PenaltyCoinsPerDay, c.DepositCoins),
		AllowDepositorRental: c.AllowDepositorRental,
	}
}

// DefaultPolicy is a two-week loan, 48h holds, rent promotion, 1 coin per day,
// 2 coins per late day and 10 coins per deposit.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:           14 * 24 * time.Hour,
		HoldPeriod:           48 * time.Hour,
		Promotion:            PromoteRent,
		Pricing:              NewPricer("time", 1, 2, 10),
		AllowDepositorRental: true,
	}
}

func (p Policy) loanDays() int { return int(math.Ceil(p.LoanPeriod.Hours() / 24)) }

// LateDays counts started 24h periods between due and returned.
func LateDays(due, returned time.Time) int {
	late := returned.Sub(due)
	if late <= 0 {
		return 0
	}
	return int((late + 24*time.Hour - 1) / (24 * time.Hour))
}
