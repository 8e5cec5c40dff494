// Package sqlite is the SQLite-backed implementation of every persistence
// port in the core: orders, stock ledger, coupons, customers, settings and
// invoices, all against one database.
//
// WAL mode is enabled on Open so readers never block writers. The write-side
// statements that carry business guarantees (carrier assignment, stock
// decrement, coupon redemption) are single conditional UPDATEs with
// affected-row checks, never read-then-write pairs.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps builds trivial in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Idempotent via IF NOT EXISTS.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    name            TEXT     NOT NULL,
    loyalty_percent REAL     NOT NULL DEFAULT 0,
    total_orders    INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS products (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT  NOT NULL,
    unit_price  REAL  NOT NULL,
    -- Decimal stock: weight-based items sell in fractional units.
    stock       REAL  NOT NULL DEFAULT 0,
    threshold   REAL  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS coupons (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    code           TEXT      NOT NULL UNIQUE,
    discount_type  TEXT      NOT NULL,
    value          REAL      NOT NULL,
    min_cart_value REAL      NOT NULL DEFAULT 0,
    max_uses       INTEGER   NOT NULL,
    current_uses   INTEGER   NOT NULL DEFAULT 0,
    valid_from     TIMESTAMP NOT NULL,
    valid_until    TIMESTAMP,
    is_active      INTEGER   NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS orders (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id        INTEGER   NOT NULL REFERENCES customers(id),
    -- NULL until a carrier wins the claim race.
    carrier_id         INTEGER,
    order_time         TIMESTAMP NOT NULL,
    requested_delivery TIMESTAMP NOT NULL,
    actual_delivery    TIMESTAMP,
    status             TEXT      NOT NULL,
    subtotal           REAL      NOT NULL,
    discount_amount    REAL      NOT NULL,
    vat_amount         REAL      NOT NULL,
    total_cost         REAL      NOT NULL,
    coupon_code        TEXT,
    invoice_ref        TEXT      NOT NULL DEFAULT '',
    notes              TEXT      NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, order_time);
CREATE INDEX IF NOT EXISTS idx_orders_carrier ON orders(carrier_id, order_time);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

CREATE TABLE IF NOT EXISTS order_items (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id     INTEGER NOT NULL REFERENCES orders(id),
    product_id   INTEGER NOT NULL REFERENCES products(id),
    -- Snapshots taken at order time; never re-derived from the catalog.
    product_name TEXT    NOT NULL,
    amount       REAL    NOT NULL,
    unit_price   REAL    NOT NULL,
    total_price  REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

INSERT OR IGNORE INTO settings (key, value) VALUES ('min_order_amount', '0');

CREATE TABLE IF NOT EXISTS invoices (
    ref        TEXT      PRIMARY KEY,
    order_id   INTEGER   NOT NULL REFERENCES orders(id),
    artifact   BLOB      NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store owns the database handle and hands out one repository facet per
// persistence port. All facets share the same connection pool.
type Store struct {
	db *sqlx.DB
}

// Orders returns the order.Repository facet.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{db: s.db} }

// Inventory returns the facet implementing inventory.Ledger and Catalog.
func (s *Store) Inventory() *InventoryRepo { return &InventoryRepo{db: s.db} }

// Coupons returns the coupon.Repository facet.
func (s *Store) Coupons() *CouponRepo { return &CouponRepo{db: s.db} }

// Customers returns the customer.Repository facet.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{db: s.db} }

// Settings returns the settings.Store facet.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{db: s.db} }

// Invoices returns the invoice.Store facet.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{db: s.db} }

// Open opens (or creates) the database at the given path, applies the schema
// and returns a ready Store.
//
//	store, err := sqlite.Open("./data/greengrocer.db")
func Open(path string) (*Store, error) {
	// The pure-Go driver configures connection state through _pragma query
	// parameters. busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// The modernc driver registers as "sqlite"; tell sqlx its bindvar style.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection. This also makes
	// the conditional UPDATEs serialise cleanly under concurrent callers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}
