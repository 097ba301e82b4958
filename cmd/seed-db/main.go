// Command seed-db loads the province shipping rate table and the admin API
// key into the database. Rate files are CSV (province,base_fee,per_kg),
// optionally gzip-compressed, and are ingested concurrently.
package main

import (
	"bufio"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mireven/shopfront/internal/storage/postgres"
)

const upsertShippingRuleSQL = `INSERT INTO shipping_rules (province, base_fee, per_kg)
	VALUES ($1, $2, $3)
	ON CONFLICT (province) DO UPDATE SET base_fee = EXCLUDED.base_fee, per_kg = EXCLUDED.per_kg`

const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (key_hash) DO NOTHING`

type shippingRate struct {
	province string
	baseFee  decimal.Decimal
	perKg    decimal.Decimal
}

func main() {
	var (
		databaseURL  string
		ratesFiles   string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&ratesFiles, "rates-files", "db/seed/shipping_rates.csv", "comma-separated CSV(.gz) files with province,base_fee,per_kg rows")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or SHOP_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SHOP_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, strings.Split(ratesFiles, ","), apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string, apiKey, apiKeyPepper string) error {
	rates, err := loadRateFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "load rate files")
	}
	slog.Info("shipping rates loaded", slog.Int("provinces", len(rates)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	for _, rate := range rates {
		if _, err := pool.Exec(ctx, upsertShippingRuleSQL, rate.province, rate.baseFee, rate.perKg); err != nil {
			return errors.Wrapf(err, "upsert rate for %s", rate.province)
		}
	}

	if apiKey != "" {
		mac := hmac.New(sha256.New, []byte(apiKeyPepper))
		mac.Write([]byte(apiKey))
		hash := hex.EncodeToString(mac.Sum(nil))

		if _, err := pool.Exec(ctx, upsertAPIKeySQL,
			uuid.New().String(), hash, "seeded-admin", []string{"admin"},
		); err != nil {
			return errors.Wrap(err, "seed api key")
		}
		slog.Info("admin api key seeded")
	}

	return nil
}

// loadRateFiles parses every file concurrently. Later files win on duplicate
// provinces, matching their order on the command line.
func loadRateFiles(ctx context.Context, files []string) (map[string]shippingRate, error) {
	perFile := make([]map[string]shippingRate, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			rates, err := parseRateFile(ctx, strings.TrimSpace(f))
			if err != nil {
				return errors.Wrapf(err, "parse %s", f)
			}
			perFile[i] = rates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]shippingRate)
	for _, rates := range perFile {
		for province, rate := range rates {
			merged[province] = rate
		}
	}
	return merged, nil
}

func parseRateFile(ctx context.Context, path string) (map[string]shippingRate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer gz.Close()
		reader = gz
	}

	rates := make(map[string]shippingRate)
	scanner := bufio.NewScanner(reader)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.Split(text, ",")
		if len(parts) != 3 {
			return nil, errors.Errorf("line %d: expected province,base_fee,per_kg", line)
		}

		baseFee, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: base_fee", line)
		}
		perKg, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: per_kg", line)
		}
		if baseFee.IsNegative() || perKg.IsNegative() {
			return nil, errors.Errorf("line %d: fees must not be negative", line)
		}

		province := strings.TrimSpace(parts[0])
		rates[province] = shippingRate{province: province, baseFee: baseFee, perKg: perKg}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rates, nil
}
