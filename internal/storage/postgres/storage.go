package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage depends on; tests substitute
// a pgxmock pool through it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

type cartRepository struct {
	storage *Storage
}

type sessionRepository struct {
	storage *Storage
}

type eventRepository struct {
	storage *Storage
}

type landingEventRepository struct {
	storage *Storage
}

type trafficFlagRepository struct {
	storage *Storage
}

// newPgxPool is swapped out by tests.
var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (Pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Carts() repository.CartRepository {
	return &cartRepository{storage: s}
}

func (s *Storage) Sessions() repository.SessionRepository {
	return &sessionRepository{storage: s}
}

func (s *Storage) Events() repository.EventRepository {
	return &eventRepository{storage: s}
}

func (s *Storage) LandingEvents() repository.LandingEventRepository {
	return &landingEventRepository{storage: s}
}

func (s *Storage) TrafficFlags() repository.TrafficFlagRepository {
	return &trafficFlagRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'customer',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS login_origins (
            user_id BIGINT NOT NULL REFERENCES users(id),
            origin_hash TEXT NOT NULL,
            last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (user_id, origin_hash)
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            base_price DOUBLE PRECISION NOT NULL,
            stock INT NOT NULL CHECK (stock >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            user_id BIGINT REFERENCES users(id),
            total_amount DOUBLE PRECISION NOT NULL,
            delivery_charge DOUBLE PRECISION NOT NULL,
            payment_method TEXT NOT NULL,
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            is_stock_deducted BOOLEAN NOT NULL DEFAULT FALSE,
            fraud_score DOUBLE PRECISION NOT NULL DEFAULT 0,
            fraud_reason TEXT NOT NULL DEFAULT '',
            ip_address TEXT NOT NULL DEFAULT '',
            user_agent TEXT NOT NULL DEFAULT '',
            ship_full_name TEXT NOT NULL,
            ship_phone TEXT NOT NULL,
            ship_address TEXT NOT NULL,
            ship_city TEXT NOT NULL,
            ship_postal_code TEXT NOT NULL,
            ship_country TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            product_id BIGINT NOT NULL REFERENCES products(id),
            name TEXT NOT NULL,
            quantity INT NOT NULL CHECK (quantity >= 1),
            unit_price DOUBLE PRECISION NOT NULL,
            size TEXT NOT NULL DEFAULT '',
            color TEXT NOT NULL DEFAULT '',
            material TEXT NOT NULL DEFAULT '',
            design_image_url TEXT,
            design_pos_x DOUBLE PRECISION,
            design_pos_y DOUBLE PRECISION
        )`,
		`CREATE TABLE IF NOT EXISTS cart_items (
            user_id BIGINT NOT NULL REFERENCES users(id),
            product_id BIGINT NOT NULL REFERENCES products(id),
            quantity INT NOT NULL CHECK (quantity >= 1),
            PRIMARY KEY (user_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS sessions (
            session_id TEXT PRIMARY KEY,
            user_id BIGINT,
            ip_hash TEXT NOT NULL,
            user_agent TEXT NOT NULL DEFAULT '',
            device TEXT NOT NULL DEFAULT 'desktop',
            browser TEXT NOT NULL DEFAULT '',
            os TEXT NOT NULL DEFAULT '',
            start_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            is_bot BOOLEAN NOT NULL DEFAULT FALSE,
            module TEXT NOT NULL DEFAULT 'public'
        )`,
		`CREATE TABLE IF NOT EXISTS events (
            id SERIAL PRIMARY KEY,
            session_id TEXT NOT NULL,
            event_type TEXT NOT NULL,
            url TEXT NOT NULL DEFAULT '',
            metadata JSONB,
            ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS landing_events (
            id SERIAL PRIMARY KEY,
            session_id TEXT NOT NULL,
            landing_page_id TEXT NOT NULL,
            event_type TEXT NOT NULL,
            campaign TEXT NOT NULL DEFAULT '',
            source TEXT NOT NULL DEFAULT '',
            metadata JSONB,
            ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS traffic_flags (
            id SERIAL PRIMARY KEY,
            ip_hash TEXT NOT NULL,
            session_id TEXT NOT NULL DEFAULT '',
            reason TEXT NOT NULL,
            severity TEXT NOT NULL DEFAULT 'low',
            ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ip ON sessions(ip_hash, start_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, ts DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_ts ON events(event_type, ts)`,
		`CREATE INDEX IF NOT EXISTS idx_landing_events_page ON landing_events(landing_page_id, ts DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_traffic_flags_ts ON traffic_flags(ts DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id, role, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&u.ID, &u.Role, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE login=$1`
	return r.scanUser(r.storage.pool.QueryRow(ctx, query, login))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE id=$1`
	return r.scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) RecordLoginOrigin(ctx context.Context, userID int64, originHash string) error {
	const query = `INSERT INTO login_origins (user_id, origin_hash)
                   VALUES ($1, $2)
                   ON CONFLICT (user_id, origin_hash) DO UPDATE SET last_seen = NOW()`
	_, err := r.storage.pool.Exec(ctx, query, userID, originHash)
	return err
}

func (r *userRepository) LoginOrigins(ctx context.Context, userID int64, limit int) ([]string, error) {
	const query = `SELECT origin_hash FROM login_origins
                   WHERE user_id=$1 ORDER BY last_seen DESC LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var origins []string
	for rows.Next() {
		var origin string
		if err := rows.Scan(&origin); err != nil {
			return nil, err
		}
		origins = append(origins, origin)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return origins, nil
}

// --- ProductRepository implementation ---

func (r *productRepository) GetByID(ctx context.Context, productID int64) (*model.Product, error) {
	const query = `SELECT id, name, base_price, stock FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &p.BasePrice, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return decrementStock(ctx, r.storage.pool, productID, quantity)
}

// execer covers both pool and transaction handles.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// decrementStock performs the atomic conditional decrement. A zero-row result
// means either a missing product or not enough stock; the follow-up read
// decides which and fills the typed error.
func decrementStock(ctx context.Context, db execer, productID int64, quantity int) error {
	const query = `UPDATE products SET stock = stock - $2 WHERE id=$1 AND stock >= $2`
	tag, err := db.Exec(ctx, query, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	const readQuery = `SELECT name, stock FROM products WHERE id=$1`
	var name string
	var stock int
	if err := db.QueryRow(ctx, readQuery, productID).Scan(&name, &stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return &domainErrors.InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Available:   stock,
		Required:    quantity,
	}
}

// --- CartRepository implementation ---

func (r *cartRepository) Clear(ctx context.Context, userID int64) error {
	const query = `DELETE FROM cart_items WHERE user_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, userID)
	return err
}

// --- OrderRepository implementation ---

const orderColumns = `id, user_id, total_amount, delivery_charge, payment_method, status, payment_status,
                      is_stock_deducted, fraud_score, fraud_reason, ip_address, user_agent,
                      ship_full_name, ship_phone, ship_address, ship_city, ship_postal_code, ship_country,
                      created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.DeliveryCharge, &o.PaymentMethod, &o.Status, &o.PaymentStatus,
		&o.IsStockDeducted, &o.FraudScore, &o.FraudReason, &o.IPAddress, &o.UserAgent,
		&o.ShippingAddress.FullName, &o.ShippingAddress.Phone, &o.ShippingAddress.Address,
		&o.ShippingAddress.City, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadOrderItems(ctx context.Context, db querier, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT product_id, name, quantity, unit_price, size, color, material,
                          design_image_url, design_pos_x, design_pos_y
                   FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		var imageURL *string
		var posX, posY *float64
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice,
			&item.Size, &item.Color, &item.Material, &imageURL, &posX, &posY); err != nil {
			return nil, err
		}
		if imageURL != nil {
			design := &model.CustomDesign{ImageURL: *imageURL}
			if posX != nil {
				design.PositionX = *posX
			}
			if posY != nil {
				design.PositionY = *posY
			}
			item.CustomDesign = design
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	stored := *order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (user_id, total_amount, delivery_charge, payment_method,
                                status, payment_status, fraud_score, fraud_reason, ip_address, user_agent,
                                ship_full_name, ship_phone, ship_address, ship_city, ship_postal_code, ship_country)
                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
                             RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, insertOrder,
			order.UserID, order.TotalAmount, order.DeliveryCharge, order.PaymentMethod,
			order.Status, order.PaymentStatus, order.FraudScore, order.FraudReason,
			order.IPAddress, order.UserAgent,
			order.ShippingAddress.FullName, order.ShippingAddress.Phone, order.ShippingAddress.Address,
			order.ShippingAddress.City, order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
		if err != nil {
			return err
		}

		const insertItem = `INSERT INTO order_items (order_id, product_id, name, quantity, unit_price,
                                size, color, material, design_image_url, design_pos_x, design_pos_y)
                            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		for _, item := range order.Items {
			var imageURL *string
			var posX, posY *float64
			if item.CustomDesign != nil {
				imageURL = &item.CustomDesign.ImageURL
				posX = &item.CustomDesign.PositionX
				posY = &item.CustomDesign.PositionY
			}
			if _, err := tx.Exec(ctx, insertItem, stored.ID, item.ProductID, item.Name,
				item.Quantity, item.UnitPrice, item.Size, item.Color, item.Material,
				imageURL, posX, posY); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, err
	}
	if order.Items, err = loadOrderItems(ctx, r.storage.pool, orderID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	return r.listOrders(ctx, query, userID)
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.listOrders(ctx, query)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if result[i].Items, err = loadOrderItems(ctx, r.storage.pool, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *orderRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE user_id=$1`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) SelectPendingOnlinePayments(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE payment_method='Online Payment' AND payment_status='pending' AND status <> 'cancelled'
              ORDER BY created_at
              LIMIT $1`
	return r.listOrders(ctx, query, limit)
}

// ApplyStatusUpdate runs the whole transition as a single transaction. The
// order row lock taken by FOR UPDATE serializes concurrent transitions for
// the same order; the conditional decrement serializes per product. Any item
// failing the stock check rolls back every change made so far.
func (r *orderRepository) ApplyStatusUpdate(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error) {
	var result *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		lockQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		order, err := scanOrder(tx.QueryRow(ctx, lockQuery, orderID))
		if err != nil {
			return err
		}

		newStatus := order.Status
		if update.Status != nil {
			if !model.CanTransition(order.Status, *update.Status) {
				return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, order.Status, *update.Status)
			}
			newStatus = *update.Status
		}

		deduct := update.Status != nil && newStatus.RequiresStockDeduction() && !order.IsStockDeducted
		if deduct {
			items, err := loadOrderItems(ctx, tx, orderID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := decrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			order.IsStockDeducted = true
		}

		order.Status = newStatus
		if update.PaymentStatus != nil {
			order.PaymentStatus = *update.PaymentStatus
		}

		const updateQuery = `UPDATE orders
                             SET status=$1, payment_status=$2, is_stock_deducted=$3, updated_at=NOW()
                             WHERE id=$4
                             RETURNING updated_at`
		if err := tx.QueryRow(ctx, updateQuery, order.Status, order.PaymentStatus,
			order.IsStockDeducted, orderID).Scan(&order.UpdatedAt); err != nil {
			return err
		}

		if order.Items, err = loadOrderItems(ctx, tx, orderID); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- SessionRepository implementation ---

func (r *sessionRepository) CreateIfAbsent(ctx context.Context, session *model.Session) (bool, error) {
	const query = `INSERT INTO sessions (session_id, user_id, ip_hash, user_agent, device, browser, os, module)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   ON CONFLICT (session_id) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, query,
		session.SessionID, session.UserID, session.IPHash, session.UserAgent,
		session.Device, session.Browser, session.OS, session.Module)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	const query = `SELECT session_id, user_id, ip_hash, user_agent, device, browser, os,
                          start_time, last_activity, is_bot, module
                   FROM sessions WHERE session_id=$1`
	var s model.Session
	err := r.storage.pool.QueryRow(ctx, query, sessionID).Scan(
		&s.SessionID, &s.UserID, &s.IPHash, &s.UserAgent, &s.Device, &s.Browser, &s.OS,
		&s.StartTime, &s.LastActivity, &s.IsBot, &s.Module)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	const query = `UPDATE sessions SET last_activity=$2 WHERE session_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, sessionID, at)
	return err
}

func (r *sessionRepository) MarkBot(ctx context.Context, sessionID string) error {
	const query = `UPDATE sessions SET is_bot=TRUE WHERE session_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, sessionID)
	return err
}

func (r *sessionRepository) CountByIPHashSince(ctx context.Context, ipHash string, cutoff time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM sessions WHERE ip_hash=$1 AND start_time > $2`
	var count int
	if err := r.storage.pool.QueryRow(ctx, query, ipHash, cutoff).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// --- EventRepository implementation ---

func (r *eventRepository) Append(ctx context.Context, event *model.Event) error {
	const query = `INSERT INTO events (session_id, event_type, url, metadata) VALUES ($1, $2, $3, $4)`
	_, err := r.storage.pool.Exec(ctx, query, event.SessionID, event.EventType, event.URL, event.Metadata)
	return err
}

func (r *eventRepository) DistinctSessions(ctx context.Context, rng model.DateRange) ([]string, error) {
	const query = `SELECT DISTINCT session_id FROM events WHERE ts >= $1 AND ts <= $2`
	rows, err := r.storage.pool.Query(ctx, query, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *eventRepository) CountUniqueOrigins(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	const query = `SELECT COUNT(DISTINCT ip_hash) FROM sessions WHERE session_id = ANY($1)`
	var count int64
	if err := r.storage.pool.QueryRow(ctx, query, sessionIDs).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *eventRepository) CountByType(ctx context.Context, eventType string, rng model.DateRange) (int64, error) {
	const query = `SELECT COUNT(*) FROM events WHERE event_type=$1 AND ts >= $2 AND ts <= $3`
	var count int64
	if err := r.storage.pool.QueryRow(ctx, query, eventType, rng.From, rng.To).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// --- LandingEventRepository implementation ---

func (r *landingEventRepository) Append(ctx context.Context, event *model.LandingEvent) error {
	const query = `INSERT INTO landing_events (session_id, landing_page_id, event_type, campaign, source, metadata)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.storage.pool.Exec(ctx, query, event.SessionID, event.LandingPageID,
		event.EventType, event.Campaign, event.Source, event.Metadata)
	return err
}

func (r *landingEventRepository) CountByType(ctx context.Context, landingPageID, eventType string, rng model.DateRange) (int64, error) {
	const query = `SELECT COUNT(*) FROM landing_events
                   WHERE landing_page_id=$1 AND event_type=$2 AND ts >= $3 AND ts <= $4`
	var count int64
	if err := r.storage.pool.QueryRow(ctx, query, landingPageID, eventType, rng.From, rng.To).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *landingEventRepository) CountBySource(ctx context.Context, landingPageID string, rng model.DateRange) (map[string]int64, error) {
	const query = `SELECT source, COUNT(*) FROM landing_events
                   WHERE landing_page_id=$1 AND source <> '' AND ts >= $2 AND ts <= $3
                   GROUP BY source`
	rows, err := r.storage.pool.Query(ctx, query, landingPageID, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		result[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- TrafficFlagRepository implementation ---

func (r *trafficFlagRepository) Append(ctx context.Context, flag *model.TrafficFlag) error {
	const query = `INSERT INTO traffic_flags (ip_hash, session_id, reason, severity) VALUES ($1, $2, $3, $4)`
	_, err := r.storage.pool.Exec(ctx, query, flag.IPHash, flag.SessionID, flag.Reason, flag.Severity)
	return err
}

func (r *trafficFlagRepository) ListRecent(ctx context.Context, limit int) ([]model.TrafficFlag, error) {
	const query = `SELECT id, ip_hash, session_id, reason, severity, ts
                   FROM traffic_flags ORDER BY ts DESC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []model.TrafficFlag
	for rows.Next() {
		var f model.TrafficFlag
		if err := rows.Scan(&f.ID, &f.IPHash, &f.SessionID, &f.Reason, &f.Severity, &f.Timestamp); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flags, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
