package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prolifel/ceker/internal/config"
	"github.com/prolifel/ceker/internal/core/engine"
	"github.com/prolifel/ceker/internal/core/preview"
	"github.com/prolifel/ceker/internal/core/probe"
	"github.com/prolifel/ceker/internal/core/registration"
	"github.com/prolifel/ceker/internal/core/scanner"
	"github.com/prolifel/ceker/internal/core/store"
)

// openStore opens the libsql store and applies migrations.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return st, nil
}

// buildEngine assembles the classification pipeline from configuration.
// Unconfigured collaborators stay nil and degrade to unavailable evidence.
func buildEngine(cfg *config.Config, st *store.Store, logger *zap.Logger) *engine.Engine {
	e := &engine.Engine{
		Lists:        st,
		TLDs:         st,
		Cache:        st,
		Registration: registration.NewResolver(cfg.Whois.Timeout),
		Prober:       &probe.Prober{Timeout: cfg.Probe.Timeout},
		Logger:       logger,
		ScanMaxWait:  cfg.Scanner.MaxWait,
		VerdictTTL:   cfg.Cache.VerdictTTL,
	}

	if strings.TrimSpace(cfg.Scanner.AccountID) != "" && strings.TrimSpace(cfg.Scanner.APIToken) != "" {
		e.Scanner = &scanner.Client{
			AccountID:    cfg.Scanner.AccountID,
			APIToken:     cfg.Scanner.APIToken,
			BaseURL:      cfg.Scanner.BaseURL,
			PollInterval: cfg.Scanner.PollInterval,
		}
	}

	if cfg.Preview.Enabled {
		e.Preview = &preview.Capturer{
			ChromePath: cfg.Preview.ChromePath,
			Timeout:    cfg.Preview.Timeout,
		}
		e.Previews = &preview.Storage{Dir: cfg.Preview.Dir}
	}

	return e
}
