package cli

import (
	"fmt"

	"github.com/ppiankov/threatstage/internal/alert"
	"github.com/ppiankov/threatstage/internal/config"
	"github.com/ppiankov/threatstage/internal/gateway"
	"github.com/ppiankov/threatstage/internal/orchestrator"
	"github.com/ppiankov/threatstage/internal/session"
)

// buildOrchestrator assembles the full pipeline from configuration:
// gateway (with optional rate-limit fallback), durable session store, and
// alert dispatcher.
func buildOrchestrator() (*orchestrator.Orchestrator, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	analyzer := buildAnalyzer(cfg)
	store := session.NewStore(session.NewFilePersister(cfg.StateDir), nil)
	orc := orchestrator.New(analyzer, store,
		orchestrator.WithAlerts(alert.NewDispatcher(cfg.Alerts)),
	)
	return orc, cfg, nil
}

func buildAnalyzer(cfg *config.Config) gateway.Analyzer {
	primary := gateway.New(gateway.Config{
		APIURL:  cfg.Gateway.APIURL,
		APIKey:  cfg.Gateway.APIKey,
		Model:   cfg.Gateway.Model,
		Timeout: cfg.Gateway.Timeout,
	})
	if !cfg.HasFallback() {
		return primary
	}
	secondary := gateway.New(gateway.Config{
		APIURL:  cfg.Fallback.APIURL,
		APIKey:  cfg.Fallback.APIKey,
		Model:   cfg.Fallback.Model,
		Timeout: cfg.Fallback.Timeout,
	})
	return gateway.NewChain(primary, secondary)
}
