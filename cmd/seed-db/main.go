// Command seed-db loads the product catalog from a JSON file and ensures an
// admin account exists. Safe to run repeatedly: products already present (by
// name) are skipped and the admin account is upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/avdeyev/storefront/internal/domain/product"
	"github.com/avdeyev/storefront/internal/events"
	"github.com/avdeyev/storefront/internal/postgres"
)

const seedConcurrency = 8

type productJSON struct {
	Name               string          `json:"name"`
	PackTitle          string          `json:"pack_title"`
	Description        string          `json:"description"`
	ImageURL           string          `json:"image_url"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Stock              int             `json:"stock"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
		slugSecret    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.json or .json.gz)")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email (or STOREFRONT_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or STOREFRONT_ADMIN_PASSWORD env)")
	flag.StringVar(&slugSecret, "slug-secret", "", "HMAC secret for slug derivation (or STOREFRONT_SLUG_SECRET env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("STOREFRONT_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STOREFRONT_ADMIN_PASSWORD")
	}
	if slugSecret == "" {
		slugSecret = os.Getenv("STOREFRONT_SLUG_SECRET")
	}
	if slugSecret == "" {
		slog.Error("slug secret is required: set --slug-secret or STOREFRONT_SLUG_SECRET")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword, slugSecret); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword, slugSecret string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile, slugSecret); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if adminEmail != "" && adminPassword != "" {
		if err := seedAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
			return errors.Wrap(err, "seed admin")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile, slugSecret string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	products, err := readProducts(productsFile)
	if err != nil {
		return err
	}

	repo := postgres.NewProductRepository(pool)
	svc := product.NewService(repo, product.NewSlugger([]byte(slugSecret)), events.Noop{})

	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list existing products")
	}
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p.Name] = struct{}{}
	}

	slog.Info("creating products", slog.Int("count", len(products)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	for _, pj := range products {
		if _, ok := seen[pj.Name]; ok {
			slog.Info("skipping existing product", slog.String("name", pj.Name))
			continue
		}
		g.Go(func() error {
			p := &product.Product{
				Name:               pj.Name,
				PackTitle:          pj.PackTitle,
				Description:        pj.Description,
				ImageURL:           pj.ImageURL,
				OriginalPrice:      pj.OriginalPrice,
				DiscountPercentage: pj.DiscountPercentage,
				Stock:              pj.Stock,
			}
			if err := svc.Create(ctx, p); err != nil {
				return errors.Wrapf(err, "create product %s", pj.Name)
			}
			slog.Info("created product", slog.String("name", p.Name), slog.String("slug", p.Slug))
			return nil
		})
	}
	return g.Wait()
}

func readProducts(path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open products file")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer gz.Close()
		r = gz
	}

	var products []productJSON
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	return products, nil
}

const upsertAdminSQL = `INSERT INTO users (email, password_hash, is_staff, is_active)
	VALUES ($1, $2, TRUE, TRUE)
	ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, is_staff = TRUE`

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("upserting admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	if _, err := pool.Exec(ctx, upsertAdminSQL, strings.ToLower(email), string(hash)); err != nil {
		return errors.Wrap(err, "upsert admin")
	}
	return nil
}
