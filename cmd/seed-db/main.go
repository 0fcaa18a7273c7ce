// Command seed-db applies the schema and loads the demo catalog plus an
// optional demo account, so a fresh database is usable immediately.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/storefront-orders/internal/repository"
)

type productJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

const (
	upsertProductSQL = `INSERT INTO products (id, name, price, image)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, image = EXCLUDED.image`

	insertDemoUserSQL = `INSERT INTO users (id, username, email, password_hash, address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING`
)

func main() {
	var (
		databaseURL  string
		productsFile string
		demoUser     string
		demoPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&demoUser, "demo-user", "", "username for a demo account (or STORE_SEED_USER env)")
	flag.StringVar(&demoPassword, "demo-password", "", "password for the demo account (or STORE_SEED_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if demoUser == "" {
		demoUser = os.Getenv("STORE_SEED_USER")
	}
	if demoPassword == "" {
		demoPassword = os.Getenv("STORE_SEED_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, demoUser, demoPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, demoUser, demoPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if demoUser != "" {
		if demoPassword == "" {
			return errors.New("demo password is required when demo user is set")
		}
		if err := seedDemoUser(ctx, pool, demoUser, demoPassword); err != nil {
			return errors.Wrap(err, "seed demo user")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL, p.ID, p.Name, p.Price, p.Image); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedDemoUser(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	slog.Info("seeding demo user", slog.String("username", username))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	_, err = pool.Exec(ctx, insertDemoUserSQL,
		uuid.New().String(),
		username,
		username+"@example.com",
		string(hash),
		"1 Demo Street",
	)
	if err != nil {
		return errors.Wrap(err, "insert demo user")
	}
	return nil
}
