package configs

// Ledger configures the reward ledger itself. Storage selects the backing
// store: "postgres" (default) or "memory" for a single-process, non-durable
// deployment. Operator is the hex address the escrow accounts are derived
// from; both ledger variants derive their own escrow address from it with
// distinct seeds. Token is the default token used by startup escrow
// initialization and seeding. Faucet exposes the demo mint endpoint.
type Ledger struct {
	Storage  string `env:"STORAGE" envDefault:"postgres"`
	Operator string `env:"OPERATOR" envDefault:"0000000000000000000000000000000000000000000000000000000000000001"`
	Token    string `env:"TOKEN" envDefault:"RWD"`
	Faucet   bool   `env:"FAUCET" envDefault:"false"`
	RunSeed  bool   `env:"RUN_SEED" envDefault:"false"`
}
