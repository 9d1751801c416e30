package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/glebarez/sqlite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
}

// InitDB opens the relational store and, when posts live in MongoDB, the document store.
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	var (
		sqlDB *gorm.DB
		err   error
	)
	switch cfg.DBDriver {
	case "sqlite":
		sqlDB, err = OpenSQLite(cfg.SQLitePath, false)
	default:
		sqlDB, err = OpenPostgres(cfg.PostgresUrl)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	db := &DB{SQL: sqlDB}
	if cfg.PostStore == "mongo" {
		mongoClient, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = mongoClient
	}
	return db, nil
}

// OpenPostgres initializes the PostgreSQL database connection using GORM
func OpenPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// OpenSQLite opens a SQLite database file. SQLite allows one writer, so the pool is capped to a
// single connection. quiet silences gorm's own logging.
func OpenSQLite(path string, quiet bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if quiet {
		level = gormlogger.Silent
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB")
	return client, nil
}

// Ping checks every open connection.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.SQL.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if db.Mongo != nil {
		return db.Mongo.Ping(ctx, nil)
	}
	return nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			logger.Error("Error getting SQL DB from GORM", slog.String("error", err.Error()))
		} else if err := sqlDB.Close(); err != nil {
			logger.Error("Error closing SQL connection", slog.String("error", err.Error()))
		} else {
			logger.Info("SQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			logger.Error("Error closing MongoDB connection", slog.String("error", err.Error()))
		} else {
			logger.Info("MongoDB connection closed")
		}
	}
}
