package core

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the immutable, process-wide settings object: a configuration
// struct passed at service construction rather than a global.
// One instance is built at startup by LoadConfig and then passed by value
// into every service constructor; nothing in this module reads viper
// directly after boot.
type Config struct {
	MRPEnableSubAssemblyCascading bool
	MRPDefaultHorizonDays         int
	InventoryAllowNegativeOnHand  bool
	InventoryAllowOversell        bool
	ProductionAutoReadyToShip     bool
	UOMRoundingScale              int32
}

// DefaultConfig returns the out-of-the-box configuration defaults.
func DefaultConfig() Config {
	return Config{
		MRPEnableSubAssemblyCascading: true,
		MRPDefaultHorizonDays:         90,
		InventoryAllowNegativeOnHand:  false,
		InventoryAllowOversell:        false,
		ProductionAutoReadyToShip:     true,
		UOMRoundingScale:              6,
	}
}

// LoadConfig reads configuration from environment variables (prefixed
// FILAOPS_) and an optional config file, falling back to DefaultConfig
// for anything unset. Grounded in the pack's viper usage
// (douglaslinsmeyer-m3-manufacturing-planning-toolbox's
// internal/config/config.go, elchinoo-stormdb's internal/config).
func LoadConfig(configPath string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("FILAOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mrp.enable_sub_assembly_cascading", cfg.MRPEnableSubAssemblyCascading)
	v.SetDefault("mrp.default_horizon_days", cfg.MRPDefaultHorizonDays)
	v.SetDefault("inventory.allow_negative_on_hand", cfg.InventoryAllowNegativeOnHand)
	v.SetDefault("inventory.allow_oversell", cfg.InventoryAllowOversell)
	v.SetDefault("production.auto_ready_to_ship_on_completion", cfg.ProductionAutoReadyToShip)
	v.SetDefault("uom.rounding_scale", cfg.UOMRoundingScale)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, Wrap(ErrInternal, CodeCatalogInconsistency, "failed to read config file", err)
		}
	}

	cfg.MRPEnableSubAssemblyCascading = v.GetBool("mrp.enable_sub_assembly_cascading")
	cfg.MRPDefaultHorizonDays = v.GetInt("mrp.default_horizon_days")
	cfg.InventoryAllowNegativeOnHand = v.GetBool("inventory.allow_negative_on_hand")
	cfg.InventoryAllowOversell = v.GetBool("inventory.allow_oversell")
	cfg.ProductionAutoReadyToShip = v.GetBool("production.auto_ready_to_ship_on_completion")
	cfg.UOMRoundingScale = int32(v.GetInt("uom.rounding_scale"))

	return cfg, nil
}
