package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu      sync.Mutex
	Users   map[string]*model.User
	ByID    map[int64]*model.User
	Origins map[int64][]string
	Next    int64
	Err     error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users:   make(map[string]*model.User),
		ByID:    make(map[int64]*model.User),
		Origins: make(map[int64][]string),
		Next:    1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: model.RoleCustomer}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// RecordLoginOrigin prepends origin hash, dropping an older duplicate.
func (s *UserRepositoryStub) RecordLoginOrigin(ctx context.Context, userID int64, originHash string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Origins == nil {
		s.Origins = make(map[int64][]string)
	}
	history := []string{originHash}
	for _, h := range s.Origins[userID] {
		if h != originHash {
			history = append(history, h)
		}
	}
	s.Origins[userID] = history
	return nil
}

// LoginOrigins returns newest-first origin hashes bounded by limit.
func (s *UserRepositoryStub) LoginOrigins(ctx context.Context, userID int64, limit int) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.Origins[userID]
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	out := make([]string, len(history))
	copy(out, history)
	return out, nil
}

// ProductRepositoryStub keeps a mutable catalog guarded by a mutex so
// concurrent decrement tests exercise real contention.
type ProductRepositoryStub struct {
	mu       sync.Mutex
	Products map[int64]*model.Product
	Err      error
}

// NewProductRepositoryStub seeds the catalog with the given products.
func NewProductRepositoryStub(products ...*model.Product) *ProductRepositoryStub {
	stub := &ProductRepositoryStub{Products: make(map[int64]*model.Product)}
	for _, p := range products {
		stub.Products[p.ID] = p
	}
	return stub
}

// GetByID returns a copy of the stored product.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, productID int64) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.Products[productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

// DecrementStock applies the conditional decrement under the stub's lock.
func (s *ProductRepositoryStub) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.Products[productID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if product.Stock < quantity {
		return &domainErrors.InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Available:   product.Stock,
			Required:    quantity,
		}
	}
	product.Stock -= quantity
	return nil
}

// Stock returns the current stock level for assertions.
func (s *ProductRepositoryStub) Stock(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product, ok := s.Products[productID]; ok {
		return product.Stock
	}
	return 0
}

// CartRepositoryStub records clear calls.
type CartRepositoryStub struct {
	mu      sync.Mutex
	Cleared []int64
	Err     error
}

// Clear records the call or returns configured error.
func (s *CartRepositoryStub) Clear(ctx context.Context, userID int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cleared = append(s.Cleared, userID)
	return nil
}

// OrderRepositoryStub is a functional in-memory order store. Status updates
// run under one lock together with product decrements, mirroring the
// transactional semantics of the real storage layer.
type OrderRepositoryStub struct {
	mu       sync.Mutex
	Orders   map[int64]*model.Order
	Next     int64
	Products *ProductRepositoryStub

	CreateErr error
	Err       error
}

// NewOrderRepositoryStub constructs the stub; products may be nil when no
// transition test needs stock.
func NewOrderRepositoryStub(products *ProductRepositoryStub) *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order), Next: 1, Products: products}
}

// Create stores the order and fills identifiers and timestamps.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *order
	stored.ID = s.Next
	s.Next++
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.Orders[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

// GetByID returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

// ListByUser returns the user's orders newest first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, order := range s.Orders {
		if order.UserID != nil && *order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

// ListAll returns every order newest first.
func (s *OrderRepositoryStub) ListAll(ctx context.Context) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, order := range s.Orders {
		orders = append(orders, *order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

// ApplyStatusUpdate mimics the transactional transition: validation, at most
// one stock deduction, all-or-nothing on item failure.
func (s *OrderRepositoryStub) ApplyStatusUpdate(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}

	if update.Status != nil && !model.CanTransition(order.Status, *update.Status) {
		return nil, domainErrors.ErrInvalidTransition
	}

	if update.Status != nil && update.Status.RequiresStockDeduction() && !order.IsStockDeducted {
		deducted := make(map[int64]int)
		for _, item := range order.Items {
			if err := s.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				for productID, qty := range deducted {
					s.Products.mu.Lock()
					s.Products.Products[productID].Stock += qty
					s.Products.mu.Unlock()
				}
				return nil, err
			}
			deducted[item.ProductID] += item.Quantity
		}
		order.IsStockDeducted = true
	}

	if update.Status != nil {
		order.Status = *update.Status
	}
	if update.PaymentStatus != nil {
		order.PaymentStatus = *update.PaymentStatus
	}
	order.UpdatedAt = time.Now()

	clone := *order
	return &clone, nil
}

// CountByUser counts the user's orders.
func (s *OrderRepositoryStub) CountByUser(ctx context.Context, userID int64) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, order := range s.Orders {
		if order.UserID != nil && *order.UserID == userID {
			count++
		}
	}
	return count, nil
}

// SelectPendingOnlinePayments returns online-payment orders still pending.
func (s *OrderRepositoryStub) SelectPendingOnlinePayments(ctx context.Context, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, order := range s.Orders {
		if order.PaymentMethod == model.PaymentMethodOnline &&
			order.PaymentStatus == model.PaymentStatusPending &&
			order.Status != model.OrderStatusCancelled {
			orders = append(orders, *order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// SessionRepositoryStub keeps sessions in-memory with duplicate collapse.
type SessionRepositoryStub struct {
	mu       sync.Mutex
	Sessions map[string]*model.Session
	Err      error
}

// NewSessionRepositoryStub constructs an empty session store.
func NewSessionRepositoryStub() *SessionRepositoryStub {
	return &SessionRepositoryStub{Sessions: make(map[string]*model.Session)}
}

// CreateIfAbsent inserts unless the session id is already present.
func (s *SessionRepositoryStub) CreateIfAbsent(ctx context.Context, session *model.Session) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Sessions[session.SessionID]; exists {
		return false, nil
	}
	clone := *session
	if clone.StartTime.IsZero() {
		clone.StartTime = time.Now()
		clone.LastActivity = clone.StartTime
	}
	s.Sessions[session.SessionID] = &clone
	return true, nil
}

// Get returns a copy of the stored session.
func (s *SessionRepositoryStub) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.Sessions[sessionID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *session
	return &clone, nil
}

// TouchActivity refreshes lastActivity.
func (s *SessionRepositoryStub) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.Sessions[sessionID]; ok {
		session.LastActivity = at
	}
	return nil
}

// MarkBot sets the one-way bot flag.
func (s *SessionRepositoryStub) MarkBot(ctx context.Context, sessionID string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.Sessions[sessionID]; ok {
		session.IsBot = true
	}
	return nil
}

// CountByIPHashSince counts sessions from the origin started after cutoff.
func (s *SessionRepositoryStub) CountByIPHashSince(ctx context.Context, ipHash string, cutoff time.Time) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, session := range s.Sessions {
		if session.IPHash == ipHash && session.StartTime.After(cutoff) {
			count++
		}
	}
	return count, nil
}

// EventRepositoryStub accumulates public events for dashboard assertions.
type EventRepositoryStub struct {
	mu       sync.Mutex
	Events   []model.Event
	Sessions *SessionRepositoryStub
	Err      error
}

// Append stores the event.
func (s *EventRepositoryStub) Append(ctx context.Context, event *model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *event
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	stored.ID = int64(len(s.Events) + 1)
	s.Events = append(s.Events, stored)
	return nil
}

// DistinctSessions returns session ids with events in range.
func (s *EventRepositoryStub) DistinctSessions(ctx context.Context, rng model.DateRange) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, event := range s.Events {
		if event.Timestamp.Before(rng.From) || event.Timestamp.After(rng.To) {
			continue
		}
		if !seen[event.SessionID] {
			seen[event.SessionID] = true
			ids = append(ids, event.SessionID)
		}
	}
	return ids, nil
}

// CountUniqueOrigins counts distinct ip hashes among the sessions.
func (s *EventRepositoryStub) CountUniqueOrigins(ctx context.Context, sessionIDs []string) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	if s.Sessions == nil {
		return 0, nil
	}
	s.Sessions.mu.Lock()
	defer s.Sessions.mu.Unlock()
	origins := make(map[string]bool)
	for _, id := range sessionIDs {
		if session, ok := s.Sessions.Sessions[id]; ok {
			origins[session.IPHash] = true
		}
	}
	return int64(len(origins)), nil
}

// CountByType counts events of one type in range.
func (s *EventRepositoryStub) CountByType(ctx context.Context, eventType string, rng model.DateRange) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, event := range s.Events {
		if event.EventType != eventType {
			continue
		}
		if event.Timestamp.Before(rng.From) || event.Timestamp.After(rng.To) {
			continue
		}
		count++
	}
	return count, nil
}

// LandingEventRepositoryStub accumulates landing events.
type LandingEventRepositoryStub struct {
	mu     sync.Mutex
	Events []model.LandingEvent
	Err    error
}

// Append stores the event.
func (s *LandingEventRepositoryStub) Append(ctx context.Context, event *model.LandingEvent) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *event
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	stored.ID = int64(len(s.Events) + 1)
	s.Events = append(s.Events, stored)
	return nil
}

// CountByType counts landing events of one type in range.
func (s *LandingEventRepositoryStub) CountByType(ctx context.Context, landingPageID, eventType string, rng model.DateRange) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, event := range s.Events {
		if event.LandingPageID != landingPageID || event.EventType != eventType {
			continue
		}
		if event.Timestamp.Before(rng.From) || event.Timestamp.After(rng.To) {
			continue
		}
		count++
	}
	return count, nil
}

// CountBySource groups landing events by traffic source.
func (s *LandingEventRepositoryStub) CountBySource(ctx context.Context, landingPageID string, rng model.DateRange) (map[string]int64, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sources := make(map[string]int64)
	for _, event := range s.Events {
		if event.LandingPageID != landingPageID || event.Source == "" {
			continue
		}
		if event.Timestamp.Before(rng.From) || event.Timestamp.After(rng.To) {
			continue
		}
		sources[event.Source]++
	}
	return sources, nil
}

// TrafficFlagRepositoryStub is the in-memory flag log.
type TrafficFlagRepositoryStub struct {
	mu    sync.Mutex
	Flags []model.TrafficFlag
	Err   error
}

// Append stores the flag.
func (s *TrafficFlagRepositoryStub) Append(ctx context.Context, flag *model.TrafficFlag) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *flag
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	stored.ID = int64(len(s.Flags) + 1)
	s.Flags = append(s.Flags, stored)
	return nil
}

// ListRecent returns the newest flags bounded by limit.
func (s *TrafficFlagRepositoryStub) ListRecent(ctx context.Context, limit int) ([]model.TrafficFlag, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := make([]model.TrafficFlag, len(s.Flags))
	copy(flags, s.Flags)
	sort.Slice(flags, func(i, j int) bool { return flags[i].ID > flags[j].ID })
	if limit > 0 && len(flags) > limit {
		flags = flags[:limit]
	}
	return flags, nil
}

// Recorded returns a snapshot of appended flags.
func (s *TrafficFlagRepositoryStub) Recorded() []model.TrafficFlag {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := make([]model.TrafficFlag, len(s.Flags))
	copy(flags, s.Flags)
	return flags
}
