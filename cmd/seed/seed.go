package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelheap/registry-admin/internal/core/modelname"
	"github.com/modelheap/registry-admin/internal/store/model"
	"github.com/modelheap/registry-admin/internal/store/sqlite"
	"gopkg.in/yaml.v3"
)

// seedFile describes demo usage history to load, one block per model.
// Counters are per-day baselines; each generated day wobbles around them
// so trend charts have some shape.
type seedFile struct {
	Models []seedModel `yaml:"models"`
}

type seedModel struct {
	Name     string `yaml:"name"`
	Days     int    `yaml:"days"`
	Workers  int    `yaml:"workers"`
	Queued   int    `yaml:"queued"`
	UsageDay int    `yaml:"usage_day"`
}

func main() {
	dsn := flag.String("db", "registry.db", "SQLite database path")
	file := flag.String("file", "seed.yaml", "Usage history seed file (optional)")
	flag.Parse()

	repo, err := sqlite.NewSQLiteStorage(*dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	ctx := context.Background()

	rawKey := "reg_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	hash := sha256.Sum256([]byte(rawKey))

	key := &model.APIKey{
		ID:        uuid.NewString(),
		Name:      "Bootstrap Admin",
		KeyHash:   hex.EncodeToString(hash[:]),
		KeyPrefix: rawKey[:8],
		Role:      "admin",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := repo.APIKeys().Create(ctx, key); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Created admin key: %s\n", key.ID)
	fmt.Printf("API Key: %s\n", rawKey)
	fmt.Printf("Use this key in your Authorization header: Bearer %s\n", rawKey)

	rows, err := loadUsageHistory(*file)
	if err != nil {
		log.Fatal(err)
	}
	if len(rows) == 0 {
		return
	}

	if err := repo.Snapshots().InsertBatch(ctx, rows); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Seeded %d usage snapshots from %s\n", len(rows), *file)
}

func loadUsageHistory(path string) ([]model.UsageSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// history is optional, the key alone is a valid seed
			return nil, nil
		}
		return nil, err
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var rows []model.UsageSnapshot
	now := time.Now().UTC()
	for _, m := range seed.Models {
		days := m.Days
		if days <= 0 {
			days = 7
		}
		for d := 0; d < days; d++ {
			// deterministic wobble, +/- keyed off the day index
			wobble := d%3 - 1
			rows = append(rows, model.UsageSnapshot{
				ID:          uuid.NewString(),
				ModelName:   m.Name,
				GroupKey:    modelname.BaseName(m.Name),
				WorkerCount: seedCounter(m.Workers, wobble),
				QueuedJobs:  seedCounter(m.Queued, wobble),
				UsageDay:    seedCounter(m.UsageDay, wobble*50),
				CapturedAt:  now.AddDate(0, 0, -d),
			})
		}
	}
	return rows, nil
}

func seedCounter(base, wobble int) sql.NullInt64 {
	v := base + wobble
	if v < 0 {
		v = 0
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
