package config

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const envPrefix = "TRADER"

// EnvConfigFile names an optional config file merged over the defaults.
const EnvConfigFile = envPrefix + "_CONFIG_FILE"

// Well known Base mainnet deployments.
const (
	DefaultTradingContract  = "0x44914408af82bC9983bbb330e3578E1105e11d4e"
	DefaultTradingStorage   = "0x8a311D7048c35985aa31C131B9A13e03a5f7422d"
	DefaultUSDCContract     = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	DefaultEntryPoint       = "0x0000000071727De22E5E9d8BAf0edAc6f37da032"
	DefaultMulticallAddress = "0xcA11bde05977b3631167028862bE2a173976CA11"
)

type LoggerServer struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
	Caller             bool
}

type EchoServer struct {
	ListenAddress           string
	EnableCORSMiddleware    bool
	EnableRecoverMiddleware bool
	EnableLoggerMiddleware  bool
}

type Chain struct {
	ChainID           int64
	Name              string
	RPCURL            string // comma separated
	ExplorerURL       string
	RegistryFile      string
	RequestsPerSecond float64
}

type Contracts struct {
	Trading               common.Address
	TradingStorage        common.Address
	USDC                  common.Address
	EntryPoint            common.Address
	Multicall             common.Address
	AccountImplementation common.Address
}

type Trading struct {
	MinPositionUSD         decimal.Decimal
	DefaultSlippagePercent decimal.Decimal
	LongTPMultiplier       decimal.Decimal
	ShortTPMultiplier      decimal.Decimal
	ApprovalCapUSDC        decimal.Decimal
	MinAllowanceUSDC       decimal.Decimal
	ExecutionFeeWei        *big.Int
	// PairCount is the number of pair indexes scanned for open trades when none are given.
	PairCount        int64
	MaxTradesPerPair int64
}

type UserOp struct {
	CallGasLimit         uint64
	VerificationGasLimit uint64
	PreVerificationGas   uint64
}

type SponsoredRelay struct {
	BaseURL         string
	APIKey          string `json:"-"`
	RequestTimeout  time.Duration
	StatusInterval  time.Duration
	MaxRetries      int
	InitialInterval time.Duration
}

type SelfRelay struct {
	PrivateKey  string `json:"-"`
	Beneficiary common.Address
}

type Relay struct {
	Provider    string
	WaitTimeout time.Duration
	Sponsored   SponsoredRelay
	Self        SelfRelay
}

type Confirm struct {
	PollInterval time.Duration
	Timeout      time.Duration
	PushURL      string
}

type Delegate struct {
	StoreDriver string // sqlite3, postgres or memory
	StoreDSN    string
	Password    string `json:"-"`
	// LightKDF encrypts the keystore with cheap scrypt parameters, meant for tests.
	LightKDF bool
}

type Setup struct {
	FallbackGasLimit  uint64
	MulticallOverhead uint64
}

// Wallet is the end-user EOA used by the CLI to sign the one-time setup transaction.
type Wallet struct {
	PrivateKey string `json:"-"`
}

type Engine struct {
	Logger    LoggerServer
	Echo      EchoServer
	Chain     Chain
	Contracts Contracts
	Trading   Trading
	UserOp    UserOp
	Relay     Relay
	Confirm   Confirm
	Delegate  Delegate
	Setup     Setup
	Wallet    Wallet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty_print_console", false)
	v.SetDefault("logger.caller", false)

	v.SetDefault("echo.listen_address", ":8080")
	v.SetDefault("echo.enable_cors_middleware", true)
	v.SetDefault("echo.enable_recover_middleware", true)
	v.SetDefault("echo.enable_logger_middleware", true)

	v.SetDefault("chain.id", 8453)
	v.SetDefault("chain.name", "Base")
	v.SetDefault("chain.rpc_url", "https://mainnet.base.org")
	v.SetDefault("chain.explorer_url", "https://basescan.org")
	v.SetDefault("chain.registry_file", "")
	v.SetDefault("chain.requests_per_second", 25)

	v.SetDefault("contracts.trading", DefaultTradingContract)
	v.SetDefault("contracts.trading_storage", DefaultTradingStorage)
	v.SetDefault("contracts.usdc", DefaultUSDCContract)
	v.SetDefault("contracts.entry_point", DefaultEntryPoint)
	v.SetDefault("contracts.multicall", DefaultMulticallAddress)
	v.SetDefault("contracts.account_implementation", "")

	v.SetDefault("trading.min_position_usd", "100")
	v.SetDefault("trading.default_slippage_percent", "1")
	v.SetDefault("trading.long_tp_multiplier", "5")
	v.SetDefault("trading.short_tp_multiplier", "0.2")
	v.SetDefault("trading.approval_cap_usdc", "10000")
	v.SetDefault("trading.min_allowance_usdc", "100")
	v.SetDefault("trading.execution_fee_wei", "1000000000000000")
	v.SetDefault("trading.pair_count", 90)
	v.SetDefault("trading.max_trades_per_pair", 40)

	v.SetDefault("userop.call_gas_limit", 1_500_000)
	v.SetDefault("userop.verification_gas_limit", 500_000)
	v.SetDefault("userop.pre_verification_gas", 100_000)

	v.SetDefault("relay.provider", "sponsored")
	v.SetDefault("relay.wait_timeout", 30*time.Second)
	v.SetDefault("relay.sponsored.base_url", "https://api.gelato.digital")
	v.SetDefault("relay.sponsored.api_key", "")
	v.SetDefault("relay.sponsored.request_timeout", 10*time.Second)
	v.SetDefault("relay.sponsored.status_interval", 500*time.Millisecond)
	v.SetDefault("relay.sponsored.max_retries", 3)
	v.SetDefault("relay.sponsored.initial_interval", 200*time.Millisecond)
	v.SetDefault("relay.self.private_key", "")
	v.SetDefault("relay.self.beneficiary", "")

	v.SetDefault("confirm.poll_interval", 50*time.Millisecond)
	v.SetDefault("confirm.timeout", 30*time.Second)
	v.SetDefault("confirm.push_url", "")

	v.SetDefault("delegate.store_driver", "sqlite3")
	v.SetDefault("delegate.store_dsn", "file:trader.db?_foreign_keys=on")
	v.SetDefault("delegate.password", "")
	v.SetDefault("delegate.light_kdf", false)

	v.SetDefault("setup.fallback_gas_limit", 250_000)
	v.SetDefault("setup.multicall_overhead", 50_000)

	v.SetDefault("wallet.private_key", "")
}

// NewViper returns a viper instance reading TRADER_* env vars (e.g. TRADER_CHAIN_RPC_URL) and,
// if TRADER_CONFIG_FILE is set, the given config file.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Failed to read config file, continuing with env")
		}
	}

	return v
}

// DefaultEngineConfigFromEnv returns the engine config as parsed from environment variables
// and their respective defaults
func DefaultEngineConfigFromEnv() Engine {
	return EngineConfigFromViper(NewViper())
}

func EngineConfigFromViper(v *viper.Viper) Engine {
	level, err := zerolog.ParseLevel(v.GetString("logger.level"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	return Engine{
		Logger: LoggerServer{
			Level:              level,
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
			Caller:             v.GetBool("logger.caller"),
		},
		Echo: EchoServer{
			ListenAddress:           v.GetString("echo.listen_address"),
			EnableCORSMiddleware:    v.GetBool("echo.enable_cors_middleware"),
			EnableRecoverMiddleware: v.GetBool("echo.enable_recover_middleware"),
			EnableLoggerMiddleware:  v.GetBool("echo.enable_logger_middleware"),
		},
		Chain: Chain{
			ChainID:           v.GetInt64("chain.id"),
			Name:              v.GetString("chain.name"),
			RPCURL:            v.GetString("chain.rpc_url"),
			ExplorerURL:       v.GetString("chain.explorer_url"),
			RegistryFile:      v.GetString("chain.registry_file"),
			RequestsPerSecond: v.GetFloat64("chain.requests_per_second"),
		},
		Contracts: Contracts{
			Trading:               common.HexToAddress(v.GetString("contracts.trading")),
			TradingStorage:        common.HexToAddress(v.GetString("contracts.trading_storage")),
			USDC:                  common.HexToAddress(v.GetString("contracts.usdc")),
			EntryPoint:            common.HexToAddress(v.GetString("contracts.entry_point")),
			Multicall:             common.HexToAddress(v.GetString("contracts.multicall")),
			AccountImplementation: common.HexToAddress(v.GetString("contracts.account_implementation")),
		},
		Trading: Trading{
			MinPositionUSD:         getDecimal(v, "trading.min_position_usd"),
			DefaultSlippagePercent: getDecimal(v, "trading.default_slippage_percent"),
			LongTPMultiplier:       getDecimal(v, "trading.long_tp_multiplier"),
			ShortTPMultiplier:      getDecimal(v, "trading.short_tp_multiplier"),
			ApprovalCapUSDC:        getDecimal(v, "trading.approval_cap_usdc"),
			MinAllowanceUSDC:       getDecimal(v, "trading.min_allowance_usdc"),
			ExecutionFeeWei:        getBigInt(v, "trading.execution_fee_wei"),
			PairCount:              v.GetInt64("trading.pair_count"),
			MaxTradesPerPair:       v.GetInt64("trading.max_trades_per_pair"),
		},
		UserOp: UserOp{
			CallGasLimit:         v.GetUint64("userop.call_gas_limit"),
			VerificationGasLimit: v.GetUint64("userop.verification_gas_limit"),
			PreVerificationGas:   v.GetUint64("userop.pre_verification_gas"),
		},
		Relay: Relay{
			Provider:    v.GetString("relay.provider"),
			WaitTimeout: v.GetDuration("relay.wait_timeout"),
			Sponsored: SponsoredRelay{
				BaseURL:         v.GetString("relay.sponsored.base_url"),
				APIKey:          v.GetString("relay.sponsored.api_key"),
				RequestTimeout:  v.GetDuration("relay.sponsored.request_timeout"),
				StatusInterval:  v.GetDuration("relay.sponsored.status_interval"),
				MaxRetries:      v.GetInt("relay.sponsored.max_retries"),
				InitialInterval: v.GetDuration("relay.sponsored.initial_interval"),
			},
			Self: SelfRelay{
				PrivateKey:  v.GetString("relay.self.private_key"),
				Beneficiary: common.HexToAddress(v.GetString("relay.self.beneficiary")),
			},
		},
		Confirm: Confirm{
			PollInterval: v.GetDuration("confirm.poll_interval"),
			Timeout:      v.GetDuration("confirm.timeout"),
			PushURL:      v.GetString("confirm.push_url"),
		},
		Delegate: Delegate{
			StoreDriver: v.GetString("delegate.store_driver"),
			StoreDSN:    v.GetString("delegate.store_dsn"),
			Password:    v.GetString("delegate.password"),
			LightKDF:    v.GetBool("delegate.light_kdf"),
		},
		Setup: Setup{
			FallbackGasLimit:  v.GetUint64("setup.fallback_gas_limit"),
			MulticallOverhead: v.GetUint64("setup.multicall_overhead"),
		},
		Wallet: Wallet{
			PrivateKey: v.GetString("wallet.private_key"),
		},
	}
}

func getDecimal(v *viper.Viper, key string) decimal.Decimal {
	d, err := decimal.NewFromString(v.GetString(key))
	if err != nil {
		log.Panic().Err(err).Str("key", key).Msg("Failed to parse decimal config value")
	}

	return d
}

func getBigInt(v *viper.Viper, key string) *big.Int {
	const base10 = 10
	n, ok := new(big.Int).SetString(v.GetString(key), base10)
	if !ok {
		log.Panic().Str("key", key).Msg("Failed to parse integer config value")
	}

	return n
}
