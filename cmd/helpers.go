package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/recruit-cli/internal/runlog"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

func initAirtable() (airtable.Client, error) {
	if cfg.Airtable.APIKey == "" {
		return nil, eris.New("airtable API key is required (RECRUIT_AIRTABLE_API_KEY)")
	}
	if cfg.Airtable.BaseID == "" {
		return nil, eris.New("airtable base ID is required (RECRUIT_AIRTABLE_BASE_ID)")
	}

	opts := []airtable.Option{
		airtable.WithRateLimit(cfg.Airtable.RateLimit),
	}
	if cfg.Airtable.BaseURL != "" {
		opts = append(opts, airtable.WithBaseURL(cfg.Airtable.BaseURL))
	}
	return airtable.NewClient(cfg.Airtable.APIKey, cfg.Airtable.BaseID, opts...), nil
}

func initRunlog(ctx context.Context) (runlog.Store, error) {
	var st runlog.Store
	var err error

	switch cfg.Runlog.Driver {
	case "sqlite":
		dsn := cfg.Runlog.DatabaseURL
		if dsn == "" {
			dsn = "recruit.db"
		}
		st, err = runlog.NewSQLite(dsn)
	case "postgres":
		st, err = runlog.NewPostgres(ctx, cfg.Runlog.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported runlog driver: %s", cfg.Runlog.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
