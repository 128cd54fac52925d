package judge

import (
	"fmt"

	"vpnvalidator/internal/config"
	"vpnvalidator/internal/port"
)

// ProviderFactory creates a Judge from the judge config.
type ProviderFactory func(cfg *config.JudgeConfig) (port.Judge, error)

// registry of judge provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a judge provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewJudge creates a Judge from the config using the registered factory.
func NewJudge(cfg *config.JudgeConfig) (port.Judge, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown judge provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
