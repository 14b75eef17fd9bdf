// Package config provides YAML-based configuration for the payment gate, the
// wallet provider, the snake game and the SSH server.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Config is the complete trust-snake configuration.
type Config struct {
	Chain   ChainConfig   `yaml:"chain"`
	Payment PaymentConfig `yaml:"payment"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Game    GameConfig    `yaml:"game"`
	Server  ServerConfig  `yaml:"server"`
}

// ChainConfig describes the target chain. The RPC URL, name and currency are
// only used when the wallet does not know the chain yet.
type ChainConfig struct {
	ID       uint64         `yaml:"id"`
	Name     string         `yaml:"name"`
	RPCURL   string         `yaml:"rpc_url"`
	Currency CurrencyConfig `yaml:"currency"`
}

// CurrencyConfig describes the chain's native currency.
type CurrencyConfig struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals int    `yaml:"decimals"`
}

// PaymentConfig is the fixed transfer that unlocks one game.
type PaymentConfig struct {
	Recipient       string        `yaml:"recipient"`
	Amount          string        `yaml:"amount"` // Human units, e.g. "0.0001"
	Confirmations   uint64        `yaml:"confirmations"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	RetryStartDelay time.Duration `yaml:"retry_start_delay"`
}

// WalletConfig selects and configures the wallet provider.
type WalletConfig struct {
	Provider      string          `yaml:"provider"` // "keystore" or "simulated"
	Keystore      string          `yaml:"keystore"` // Path to an encrypted key JSON file
	PasswordFile  string          `yaml:"password_file"`
	PrivateKeyEnv string          `yaml:"private_key_env"`
	Networks      []NetworkConfig `yaml:"networks"` // Chains the wallet already knows
}

// NetworkConfig is a chain the wallet knows before any AddChain call.
type NetworkConfig struct {
	ID     uint64 `yaml:"id"`
	Name   string `yaml:"name"`
	RPCURL string `yaml:"rpc_url"`
}

// GameConfig holds snake rules. Distances are canvas units, as on a 2D canvas.
type GameConfig struct {
	CanvasWidth     int           `yaml:"canvas_width"`
	CanvasHeight    int           `yaml:"canvas_height"`
	Grid            int           `yaml:"grid"`
	Origin          PointConfig   `yaml:"origin"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MinInterval     time.Duration `yaml:"min_interval"`
	IntervalStep    time.Duration `yaml:"interval_step"`
	SpeedUpEvery    int           `yaml:"speed_up_every"` // Score multiple that speeds the game up
	FoodReward      int           `yaml:"food_reward"`
	CountdownFrom   int           `yaml:"countdown_from"`
	CountdownStep   time.Duration `yaml:"countdown_step"`
	GoDuration      time.Duration `yaml:"go_duration"`
	Sprites         SpriteConfig  `yaml:"sprites"`
}

// PointConfig is a canvas position.
type PointConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// SpriteConfig holds the two-column glyphs drawn for one grid cell.
type SpriteConfig struct {
	Snake string `yaml:"snake"`
	Food  string `yaml:"food"`
}

// ServerConfig configures `trustsnake serve`.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	MaxSessions int           `yaml:"max_sessions"`
}

// Cols returns the number of grid columns on the canvas.
func (g GameConfig) Cols() int {
	return g.CanvasWidth / g.Grid
}

// Rows returns the number of grid rows on the canvas.
func (g GameConfig) Rows() int {
	return g.CanvasHeight / g.Grid
}

var hexAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Validate checks the invariants the gate and the game rely on.
func (c Config) Validate() error {
	var errs []error

	if c.Chain.ID == 0 {
		errs = append(errs, errors.New("chain.id must be set"))
	}
	if c.Chain.Currency.Decimals < 0 || c.Chain.Currency.Decimals > 77 {
		errs = append(errs, fmt.Errorf("chain.currency.decimals %d out of range", c.Chain.Currency.Decimals))
	}
	if !hexAddress.MatchString(c.Payment.Recipient) {
		errs = append(errs, fmt.Errorf("payment.recipient %q is not a hex address", c.Payment.Recipient))
	}
	if c.Payment.Amount == "" {
		errs = append(errs, errors.New("payment.amount must be set"))
	}
	if c.Payment.Confirmations == 0 {
		errs = append(errs, errors.New("payment.confirmations must be at least 1"))
	}

	g := c.Game
	switch {
	case g.Grid <= 0:
		errs = append(errs, errors.New("game.grid must be positive"))
	case g.CanvasWidth%g.Grid != 0 || g.CanvasHeight%g.Grid != 0:
		errs = append(errs, fmt.Errorf("game.grid %d must divide the %dx%d canvas", g.Grid, g.CanvasWidth, g.CanvasHeight))
	case g.Origin.X%g.Grid != 0 || g.Origin.Y%g.Grid != 0:
		errs = append(errs, fmt.Errorf("game.origin (%d,%d) is not grid aligned", g.Origin.X, g.Origin.Y))
	case g.Origin.X < 0 || g.Origin.Y < 0 || g.Origin.X >= g.CanvasWidth || g.Origin.Y >= g.CanvasHeight:
		errs = append(errs, fmt.Errorf("game.origin (%d,%d) is outside the canvas", g.Origin.X, g.Origin.Y))
	}
	if g.MinInterval <= 0 || g.MinInterval > g.InitialInterval {
		errs = append(errs, fmt.Errorf("game.min_interval %v must be in (0, %v]", g.MinInterval, g.InitialInterval))
	}
	if g.IntervalStep <= 0 {
		errs = append(errs, errors.New("game.interval_step must be positive"))
	}
	if g.SpeedUpEvery <= 0 {
		errs = append(errs, errors.New("game.speed_up_every must be positive"))
	}
	if g.CountdownFrom < 0 {
		errs = append(errs, errors.New("game.countdown_from must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}
