package stats

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/alexivanou/cityphoto-api/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, config.DBConfig) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("stats_%d", rng.Int())}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg, "file://../../migrations"))

	return db, cfg
}

func TestCollector_Collect(t *testing.T) {
	db, cfg := setupTestDB(t)
	ctx := context.Background()

	stmts := []string{
		"INSERT INTO photos (id, image_url, latitude, longitude, city_id) VALUES (1, 'https://img/1.jpg', 38.7, -9.1, 1)",
		"INSERT INTO cities (id, name, country, cover_photo_id) VALUES (1, 'Lisbon', 'Portugal', 1)",
		"INSERT INTO cities (id, name, country) VALUES (2, 'Porto', 'Portugal')",
		"INSERT INTO city_translations (city_id, language, translated_name) VALUES (1, 'en', 'Lisbon'), (1, 'pt', 'Lisbon')",
		"INSERT INTO users (username, email, firebase_uid) VALUES ('ana', 'ana@example.com', 'uid-ana')",
	}
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s)
		require.NoError(t, err)
	}

	collector := NewCollector(db, cfg)

	stats, err := collector.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "memory", stats.Database.Type)
	assert.Equal(t, int64(6), stats.Database.TotalRecords)

	counts := map[string]int64{}
	for _, ts := range stats.Database.TableStats {
		counts[ts.Name] = ts.RowCount
	}
	assert.Equal(t, int64(2), counts["cities"])
	assert.Equal(t, int64(0), counts["user_providers"])

	assert.Equal(t, ContentStats{
		Cities:          2,
		CitiesWithCover: 1,
		Photos:          1,
		Users:           1,
		LinkedUsers:     1,
		Languages:       2,
	}, stats.Content)

	assert.Greater(t, stats.Memory.Alloc, uint64(0))
	assert.GreaterOrEqual(t, stats.Runtime.NumGoroutines, 1)

	stats2, err := collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Memory.Alloc, stats2.Memory.Alloc)
}

func TestCollector_EmptyDB(t *testing.T) {
	db, cfg := setupTestDB(t)

	stats, err := NewCollector(db, cfg).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Database.TotalRecords)
	assert.Len(t, stats.Database.TableStats, 5)
	assert.Zero(t, stats.Content.Languages)
}
