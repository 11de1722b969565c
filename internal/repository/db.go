package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
)

// Dialect is the ent dialect name used for SQL generation.
type Dialect string

const (
	DialectSQLite   Dialect = dialect.SQLite
	DialectPostgres Dialect = dialect.Postgres
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ConfigFrom adapts the application database settings.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		DialTimeout:     c.DialTimeout,
	}
}

// DB is an ent SQL driver plus the pgx pool backing it, when Postgres.
type DB struct {
	Driver  *entsql.Driver
	Dialect Dialect
	pool    *pgxpool.Pool
}

// DialectFor picks Postgres for postgres:// URLs and SQLite for everything else.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects, wraps the connection for ent and applies the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger = common.LoggerOrDefault(logger)
	var (
		db  *DB
		err error
	)
	switch DialectFor(cfg.DSN) {
	case DialectPostgres:
		db, err = openPostgres(ctx, cfg, logger)
	default:
		db, err = openSQLite(cfg, logger)
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.NewAppError("DB_OPEN", "open database", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	if err := db.migrate(ctx); err != nil {
		db.Close(logger)
		return nil, common.NewAppError("DB_MIGRATE", "apply schema", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	logger.Info("successfully connected to database", "dialect", db.Dialect)
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", DialectPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "estimate-parser"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	// Wrap pool as *sql.DB for ent
	drv := entsql.OpenDB(dialect.Postgres, stdlib.OpenDBFromPool(pool))
	return &DB{Driver: drv, Dialect: DialectPostgres, pool: pool}, nil
}

func openSQLite(cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := sqliteDSN(cfg.DSN)
	logger.Info("connecting to database", "dialect", DialectSQLite, "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps a :memory: database alive across calls
	db.SetMaxOpenConns(1)
	return &DB{Driver: entsql.OpenDB(dialect.SQLite, db), Dialect: DialectSQLite}, nil
}

// sqliteDSN turns on foreign keys so deleting a parse removes its items.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Close closes the database connections gracefully
func (db *DB) Close(logger *slog.Logger) {
	logger = common.LoggerOrDefault(logger)
	logger.Info("closing database connections")
	if db.Driver != nil {
		if err := db.Driver.Close(); err != nil {
			logger.Error("failed to close ent driver", "error", err)
		}
	}
	if db.pool != nil {
		db.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if db.pool != nil {
		return db.pool.Ping(ctx)
	}
	return db.Driver.DB().PingContext(ctx)
}

// builder returns a statement builder for the connected dialect.
func (db *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(string(db.Dialect))
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range db.schema() {
		query, args := stmt.Query()
		if err := db.Driver.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

// schema is portable between SQLite and Postgres: ids are UUID text, dates ISO text.
func (db *DB) schema() []entsql.Querier {
	b := db.builder()
	history := b.CreateTable(tableHistory).IfNotExists().
		Columns(
			entsql.Column("id").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("source_name").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("strategy").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("vendor_name").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("vendor_address").Type("TEXT"),
			entsql.Column("estimate_date").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("total_excl_tax").Type("BIGINT").Attr("NOT NULL"),
			entsql.Column("total_incl_tax").Type("BIGINT").Attr("NOT NULL"),
			entsql.Column("raw_text").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("parsed_json").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("created_at").Type("TEXT").Attr("NOT NULL"),
		).
		PrimaryKey("id")

	items := b.CreateTable(tableItems).IfNotExists().
		Columns(
			entsql.Column("history_id").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("position").Type("INTEGER").Attr("NOT NULL"),
			entsql.Column("item_name_raw").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("item_name_norm").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("cost_type").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("amount_excl_tax").Type("BIGINT").Attr("NOT NULL"),
			entsql.Column("quantity").Type("INTEGER").Attr("NOT NULL"),
		).
		PrimaryKey("history_id", "position").
		ForeignKeys(
			entsql.ForeignKey().Columns("history_id").
				Reference(entsql.Reference().Table(tableHistory).Columns("id")).
				OnDelete("CASCADE"),
		)

	return []entsql.Querier{
		history,
		items,
		b.CreateIndex("idx_parsed_items_norm").IfNotExists().Table(tableItems).Columns("item_name_norm", "cost_type"),
		b.CreateIndex("idx_parse_history_created").IfNotExists().Table(tableHistory).Columns("created_at"),
	}
}
