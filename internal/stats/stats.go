package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/jmoiron/sqlx"
)

// Stats is a point-in-time snapshot of the process and its store
type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Content   ContentStats  `json:"content"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// ContentStats describes what ingestion and sign-ups have produced so far
type ContentStats struct {
	Cities          int64 `json:"cities"`
	CitiesWithCover int64 `json:"cities_with_cover"`
	Photos          int64 `json:"photos"`
	Users           int64 `json:"users"`
	LinkedUsers     int64 `json:"linked_users"`
	Languages       int   `json:"languages"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

var tables = []string{"photos", "cities", "city_translations", "users", "user_providers"}

type Collector struct {
	db         *sqlx.DB
	config     config.DBConfig
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

var memStatsCacheDuration = 5 * time.Second

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
		Memory:    c.collectMemoryStats(),
		Runtime:   c.collectRuntimeStats(),
	}

	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Database = *dbStats

	content, err := c.collectContentStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Content = *content

	return stats, nil
}

// ReadMemStats stops the world, so results are reused for a few seconds.
func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{Type: string(c.config.Type)}

	if size, err := c.databaseSize(ctx); err == nil {
		stats.SizeBytes = size
	}

	for _, table := range tables {
		stat, err := c.tableStat(ctx, table)
		if err != nil {
			return nil, err
		}
		stats.TableStats = append(stats.TableStats, *stat)
		stats.TotalRecords += stat.RowCount
	}

	return stats, nil
}

func (c *Collector) collectContentStats(ctx context.Context) (*ContentStats, error) {
	var content ContentStats

	counts := []struct {
		dst   *int64
		query string
	}{
		{&content.Cities, `SELECT COUNT(*) FROM cities`},
		{&content.CitiesWithCover, `SELECT COUNT(*) FROM cities WHERE cover_photo_id IS NOT NULL`},
		{&content.Photos, `SELECT COUNT(*) FROM photos`},
		{&content.Users, `SELECT COUNT(*) FROM users`},
		{&content.LinkedUsers, `SELECT COUNT(*) FROM users WHERE firebase_uid IS NOT NULL`},
	}
	for _, q := range counts {
		if err := c.db.GetContext(ctx, q.dst, q.query); err != nil {
			return nil, fmt.Errorf("failed to collect content stats: %w", err)
		}
	}

	if err := c.db.GetContext(ctx, &content.Languages, `SELECT COUNT(DISTINCT language) FROM city_translations`); err != nil {
		return nil, fmt.Errorf("failed to count languages: %w", err)
	}

	return &content, nil
}

func (c *Collector) databaseSize(ctx context.Context) (int64, error) {
	var size int64
	query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	if c.config.Type == config.DBTypePostgreSQL {
		query = "SELECT pg_database_size(current_database())"
	}
	if err := c.db.GetContext(ctx, &size, query); err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) tableStat(ctx context.Context, table string) (*TableStat, error) {
	stat := &TableStat{Name: table}

	if err := c.db.GetContext(ctx, &stat.RowCount, "SELECT COUNT(*) FROM "+table); err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}

	// Size is best effort: dbstat is only compiled into some SQLite builds.
	var size int64
	if c.config.Type == config.DBTypePostgreSQL {
		_ = c.db.GetContext(ctx, &size, `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`, table)
	} else {
		_ = c.db.GetContext(ctx, &size, `SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`, table)
	}
	stat.SizeBytes = size

	return stat, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
