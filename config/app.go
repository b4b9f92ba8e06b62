package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"` // empty selects the in-memory stores
	JWTSecret   string `env:"JWT_SECRET" envDefault:"local_dev_secret" validate:"required"`
	Env         string `env:"APP_ENV" envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`

	Lending   Lending   `envPrefix:"LENDING_"`
	Recommend Recommend `envPrefix:"RECOMMEND_"`
}

type Lending struct {
	LoanPeriod           time.Duration `env:"LOAN_PERIOD" envDefault:"336h" validate:"gt=0"`
	HoldPeriod           time.Duration `env:"HOLD_PERIOD" envDefault:"48h" validate:"gt=0"`
	Promotion            string        `env:"PROMOTION" envDefault:"rent" validate:"oneof=rent hold"`
	Pricing              string        `env:"PRICING" envDefault:"time" validate:"oneof=time recurrence"`
	RentCoinsPerDay      int           `env:"RENT_COINS_PER_DAY" envDefault:"1" validate:"gte=0"`
	PenaltyCoinsPerDay   int           `env:"PENALTY_COINS_PER_DAY" envDefault:"2" validate:"gte=0"`
	DepositCoins         int           `env:"DEPOSIT_COINS" envDefault:"10" validate:"gte=0"`
	AllowDepositorRental bool          `env:"ALLOW_DEPOSITOR_RENTAL" envDefault:"true"`
	SweepInterval        time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m" validate:"gt=0"`
	OverdueInterval      time.Duration `env:"OVERDUE_INTERVAL" envDefault:"1h" validate:"gt=0"`
}

type Recommend struct {
	DefaultLimit  int     `env:"DEFAULT_LIMIT" envDefault:"5" validate:"gt=0"`
	MaxLimit      int     `env:"MAX_LIMIT" envDefault:"50" validate:"gtefield=DefaultLimit"`
	ContentWeight float64 `env:"CONTENT_WEIGHT" envDefault:"0.7" validate:"gte=0"`
	CollabWeight  float64 `env:"COLLAB_WEIGHT" envDefault:"0.3" validate:"gte=0"`
}

func (a App) InMemory() bool { return a.DatabaseURL == "" }
