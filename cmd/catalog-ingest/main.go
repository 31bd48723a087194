// Command catalog-ingest bulk-imports marketplace listings from gzipped
// JSONL dumps. Each line is one listing object. Listings are validated with
// the same invariants the API enforces, owners are upserted as account
// stubs, and a bloom filter keeps repeated ids from triggering a database
// existence probe for every row.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tradepost/tradepost/internal/domain/catalog"
	"github.com/tradepost/tradepost/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
		workers     int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz listing dumps")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "concurrent insert workers")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, workers); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, workers int) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	ing := &ingester{
		pool:   pool,
		seen:   bloom.NewWithEstimates(bloomCapacity, bloomFPR),
		owners: make(map[string]struct{}),
	}

	for _, f := range files {
		slog.Info("ingesting file", slog.String("file", f))
		if err := ing.ingestFile(ctx, f, workers); err != nil {
			return errors.Wrapf(err, "ingest %s", f)
		}
	}

	slog.Info("ingest summary",
		slog.Uint64("inserted", ing.inserted.Load()),
		slog.Uint64("skipped", ing.skipped.Load()),
		slog.Uint64("invalid", ing.invalid.Load()),
	)
	return nil
}

// listing is the JSONL record shape of one dumped marketplace listing.
type listing struct {
	ID          string
	Name        string
	Description string
	Category    string
	Condition   string
	Price       decimal.Decimal
	Latitude    float64
	Longitude   float64
	Images      []string
	OwnerID     string
	Status      string
}

// dbConn is the slice of the connection pool the ingester uses.
type dbConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ingester struct {
	pool dbConn

	mu     sync.Mutex
	seen   *bloom.BloomFilter
	owners map[string]struct{}

	inserted atomic.Uint64
	skipped  atomic.Uint64
	invalid  atomic.Uint64
}

// ingestFile streams one gzipped JSONL file: a single reader goroutine
// feeds decoded lines to a pool of insert workers.
func (ing *ingester) ingestFile(ctx context.Context, path string, workers int) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	lines := make(chan []byte, workers*4)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		sc := bufio.NewScanner(gz)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		var count uint64
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			count++
			if count%progressEvery == 0 {
				slog.Info("ingest progress", slog.String("file", path), slog.Uint64("lines", count))
			}
			select {
			case lines <- []byte(line):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return errors.Wrap(sc.Err(), "scan")
	})

	for range workers {
		g.Go(func() error {
			for line := range lines {
				if err := ing.ingestLine(ctx, line); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (ing *ingester) ingestLine(ctx context.Context, line []byte) error {
	l, err := parseListing(line)
	if err != nil {
		ing.invalid.Add(1)
		slog.Warn("skipping malformed line", slog.String("error", err.Error()))
		return nil
	}

	p := catalog.Product{
		Name:        l.Name,
		Description: l.Description,
		Category:    catalog.Category(l.Category),
		Condition:   catalog.Condition(l.Condition),
		Price:       l.Price,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Images:      l.Images,
		OwnerID:     l.OwnerID,
		Status:      catalog.Status(l.Status),
	}
	if p.Condition == "" {
		p.Condition = catalog.DefaultCondition
	}
	if p.Status == "" {
		p.Status = catalog.StatusActive
	}
	if err := catalog.Validate(&p); err != nil {
		ing.invalid.Add(1)
		slog.Warn("skipping invalid listing", slog.String("id", l.ID), slog.String("error", err.Error()))
		return nil
	}

	// The bloom filter answers "definitely new" cheaply; only a maybe-seen
	// id pays for a database existence probe.
	if ing.maybeSeen(l.ID) {
		var exists bool
		if err := ing.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, l.ID,
		).Scan(&exists); err != nil {
			return errors.Wrap(err, "check existing")
		}
		if exists {
			ing.skipped.Add(1)
			return nil
		}
	}

	if err := ing.ensureOwner(ctx, l.OwnerID); err != nil {
		return err
	}

	tag, err := ing.pool.Exec(ctx, `INSERT INTO products
		(id, name, description, category, condition, price, latitude, longitude, images, owner_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		l.ID, p.Name, p.Description, p.Category, p.Condition, p.Price,
		p.Latitude, p.Longitude, p.Images, p.OwnerID, p.Status,
	)
	if err != nil {
		return errors.Wrapf(err, "insert listing %q", l.ID)
	}

	// A bloom false negative can race another worker to the same id; the
	// conflict clause swallows the duplicate, so count it as skipped.
	if tag.RowsAffected() == 0 {
		ing.skipped.Add(1)
		return nil
	}

	ing.inserted.Add(1)
	return nil
}

// maybeSeen tests-and-adds the id in one critical section.
func (ing *ingester) maybeSeen(id string) bool {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.seen.TestOrAddString(id)
}

// ensureOwner upserts an account stub so the listing FK holds. Dump owners
// are created as active accounts; the identity subsystem reconciles them.
func (ing *ingester) ensureOwner(ctx context.Context, ownerID string) error {
	ing.mu.Lock()
	_, known := ing.owners[ownerID]
	if !known {
		ing.owners[ownerID] = struct{}{}
	}
	ing.mu.Unlock()
	if known {
		return nil
	}

	_, err := ing.pool.Exec(ctx,
		`INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, ownerID)
	return errors.Wrapf(err, "upsert owner %q", ownerID)
}

func parseListing(data []byte) (listing, error) {
	var l listing
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			l.ID, err = d.Str()
		case "name":
			l.Name, err = d.Str()
		case "description":
			l.Description, err = d.Str()
		case "category":
			l.Category, err = d.Str()
		case "condition":
			l.Condition, err = d.Str()
		case "price":
			var num jx.Num
			num, err = d.Num()
			if err == nil {
				l.Price, err = decimal.NewFromString(num.String())
			}
		case "latitude":
			l.Latitude, err = d.Float64()
		case "longitude":
			l.Longitude, err = d.Float64()
		case "images":
			err = d.Arr(func(d *jx.Decoder) error {
				img, err := d.Str()
				if err != nil {
					return err
				}
				l.Images = append(l.Images, img)
				return nil
			})
		case "ownerId", "owner_id":
			l.OwnerID, err = d.Str()
		case "status":
			l.Status, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return listing{}, err
	}
	if l.ID == "" {
		return listing{}, fmt.Errorf("listing id is required")
	}
	return l, nil
}

