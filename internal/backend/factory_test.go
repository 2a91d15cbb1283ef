package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"presupuesto/internal/config"
	"presupuesto/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "mongo", MongoURI: "mongodb://localhost", MongoDatabase: "presupuesto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != MongoBackend || cfg.MongoDatabase != "presupuesto" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "data/x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"mongo without uri", Config{Type: MongoBackend, MongoDatabase: "db"}, true},
		{"mongo without database", Config{Type: MongoBackend, MongoURI: "mongodb://x"}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "nested", "presupuesto.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}

			if err := res.Repository.PutCategory(ctx, core.Category{ID: "1", Name: "Alimentación", Budget: 500}); err != nil {
				t.Fatalf("put: %v", err)
			}
			_, err = res.Repository.CreateExpense(ctx, core.Expense{
				CategoryID: "1", Amount: 10, Date: time.Now(), Description: "pan", UserID: "u1", UserName: "Papá",
			})
			if err != nil {
				t.Fatalf("create expense: %v", err)
			}
			exps, err := res.Repository.ListExpenses(ctx)
			if err != nil || len(exps) != 1 {
				t.Fatalf("list: %v %d", err, len(exps))
			}
		})
	}

	if _, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend}); err == nil {
		t.Fatal("expected validation error")
	}
}
