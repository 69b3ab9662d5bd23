package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

const (
	defaultDBDriver     = "postgres"
	defaultPingTimeout  = 5 * time.Second
	defaultConnMaxIdle  = 2 * time.Minute
	defaultConnMaxLife  = 30 * time.Minute
	defaultMaxIdleConns = 5
	defaultMaxOpenConns = 25
	defaultMaxPoolSize  = 25
)

// Backend names the database engine a connection URI points at.
type Backend string

const (
	BackendMongo    Backend = "mongodb"
	BackendPostgres Backend = "postgres"
)

// BackendFor picks the backend from the URI scheme.
func BackendFor(uri string) (Backend, error) {
	if strings.TrimSpace(uri) == "" {
		return "", errors.New("database uri is required")
	}
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return "", errors.New("database uri has no scheme")
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// OpenPostgres opens a pooled connection to the Postgres URI and checks it.
func OpenPostgres(ctx context.Context, uri string) (*sql.DB, error) {
	if _, err := url.Parse(uri); err != nil {
		return nil, fmt.Errorf("parse postgres uri: %w", err)
	}

	db, err := sql.Open(defaultDBDriver, uri)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxIdleTime(defaultConnMaxIdle)
	db.SetConnMaxLifetime(defaultConnMaxLife)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetMaxOpenConns(defaultMaxOpenConns)

	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// OpenMongo connects to the Mongo URI and returns the database named in the
// URI path, or fallbackName when the URI names none.
func OpenMongo(ctx context.Context, uri, fallbackName string) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}
	name := cs.Database
	if name == "" {
		name = fallbackName
	}
	if name == "" {
		return nil, errors.New("mongo database name is required")
	}

	client, err := mongo.Connect(
		options.Client().
			ApplyURI(uri).
			SetMaxPoolSize(defaultMaxPoolSize).
			SetMaxConnIdleTime(defaultConnMaxIdle),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client.Database(name), nil
}
