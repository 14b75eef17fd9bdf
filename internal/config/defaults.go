package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/trustsnake.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chain: ChainConfig{
			ID:     13579,
			Name:   "Intuition Testnet",
			RPCURL: "https://testnet.rpc.intuition.systems",
			Currency: CurrencyConfig{
				Name:     "TRUST",
				Symbol:   "TRUST",
				Decimals: 18,
			},
		},
		Payment: PaymentConfig{
			Recipient:       "0x5abc8a77cb6a174a6991aa62752cc4ad07ac517b",
			Amount:          "0.0001",
			Confirmations:   1,
			PollInterval:    time.Second,
			RetryStartDelay: 500 * time.Millisecond,
		},
		Wallet: WalletConfig{
			Provider:      "keystore",
			PrivateKeyEnv: "TRUSTSNAKE_PRIVATE_KEY",
		},
		Game: GameConfig{
			CanvasWidth:     400,
			CanvasHeight:    400,
			Grid:            20,
			Origin:          PointConfig{X: 200, Y: 200},
			InitialInterval: 150 * time.Millisecond,
			MinInterval:     50 * time.Millisecond,
			IntervalStep:    10 * time.Millisecond,
			SpeedUpEvery:    10,
			FoodReward:      2,
			CountdownFrom:   3,
			CountdownStep:   time.Second,
			GoDuration:      700 * time.Millisecond,
			Sprites: SpriteConfig{
				Snake: "██",
				Food:  "◖◗",
			},
		},
		Server: ServerConfig{
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
			MaxSessions: 32,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultYAML
}
