// Package external wires third-party football data providers.
package external

import (
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/football-stats/external/apifootball"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

// ProviderFactory builds a provider from its settings.
type ProviderFactory func(cfg ProviderConfig) usecase.Provider

type ProviderConfig struct {
	Name        string
	APIFootball apifootball.ClientConfig
}

var factories = map[string]ProviderFactory{
	apifootball.ProviderName: func(cfg ProviderConfig) usecase.Provider {
		return apifootball.NewClient(cfg.APIFootball)
	},
}

// NewProvider selects the provider named by cfg.Name.
func NewProvider(cfg ProviderConfig) (usecase.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = apifootball.ProviderName
	}

	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", cfg.Name, strings.Join(ProviderNames(), ", "))
	}
	return factory(cfg), nil
}

func ProviderNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
