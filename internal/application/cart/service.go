package cart

import (
	"context"
	"sync"
	"time"

	"github.com/pharmacy/backend/internal/domain/cart"
	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// shadowSyncTimeout bounds a background shadow write so a slow database
// cannot pin goroutines indefinitely.
const shadowSyncTimeout = 5 * time.Second

// Cache is the fast, authoritative cart store. A miss means the customer has
// no cached cart; the service then falls back to the durable shadow.
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, bool, error)
	Put(ctx context.Context, userID uuid.UUID, snapshot *cart.Snapshot) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// StockChecker answers aggregate availability questions during cart edits
type StockChecker interface {
	AvailableStock(ctx context.Context, productID uuid.UUID) (int, error)
}

// Service owns the customer's cart: cache-first reads, with the durable
// shadow mirrored in the background on a best-effort basis.
type Service struct {
	cache    Cache
	shadow   cart.ShadowRepository
	products catalog.ProductRepository
	stock    StockChecker
	logger   *zap.Logger
	syncWG   sync.WaitGroup
}

// NewService creates a cart service
func NewService(cache Cache, shadow cart.ShadowRepository, products catalog.ProductRepository, stock StockChecker, logger *zap.Logger) *Service {
	return &Service{
		cache:    cache,
		shadow:   shadow,
		products: products,
		stock:    stock,
		logger:   logger,
	}
}

// Get returns the customer's cart. On a cache miss it rebuilds the snapshot
// from the durable shadow and re-primes the cache. An absent cart reads as
// empty, never as an error.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, error) {
	snapshot, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		return snapshot, nil
	}

	lines, err := s.shadow.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot = &cart.Snapshot{Lines: lines}
	if !snapshot.IsEmpty() {
		if err := s.cache.Put(ctx, userID, snapshot); err != nil {
			s.logger.Warn("failed to re-prime cart cache",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return snapshot, nil
}

// AddItem merges quantity into the cart after checking that the prospective
// total for the line does not exceed available stock.
func (s *Service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.Snapshot, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for purchase")
	}

	snapshot, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	prospective := snapshot.QuantityOf(productID) + quantity
	if err := s.checkStock(ctx, product, prospective); err != nil {
		return nil, err
	}

	if err := snapshot.Add(productID, quantity); err != nil {
		return nil, err
	}
	return snapshot, s.persist(ctx, userID, snapshot)
}

// UpdateItem sets a line's quantity. Zero removes the line. The line must
// already exist.
func (s *Service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.Snapshot, error) {
	snapshot, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, shared.ErrNotFound
	}

	if quantity > 0 {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := s.checkStock(ctx, product, quantity); err != nil {
			return nil, err
		}
	}

	if err := snapshot.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	return snapshot, s.persist(ctx, userID, snapshot)
}

// RemoveItem drops a line from the cart
func (s *Service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*cart.Snapshot, error) {
	return s.UpdateItem(ctx, userID, productID, 0)
}

// Clear wipes both the cached cart and the durable shadow
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cache.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.shadow.Clear(ctx, userID); err != nil {
		s.logger.Warn("failed to clear cart shadow",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}

func (s *Service) checkStock(ctx context.Context, product *catalog.Product, wanted int) error {
	available, err := s.stock.AvailableStock(ctx, product.ID)
	if err != nil {
		return err
	}
	if available < wanted {
		return shared.NewInsufficientStockError(product.Name, wanted, available)
	}
	return nil
}

// persist writes the cache copy and hands the shadow mirror off to the
// background; the request never waits on the durable write.
func (s *Service) persist(ctx context.Context, userID uuid.UUID, snapshot *cart.Snapshot) error {
	if err := s.cache.Put(ctx, userID, snapshot); err != nil {
		return err
	}
	s.syncShadow(userID, snapshot.Lines)
	return nil
}

// syncShadow mirrors the cart lines to the durable shadow in a goroutine.
// The write gets its own context so the request finishing does not cancel
// it. A failure is logged and swallowed; the cache remains authoritative.
func (s *Service) syncShadow(userID uuid.UUID, lines []cart.Line) {
	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shadowSyncTimeout)
		defer cancel()
		if err := s.shadow.Replace(ctx, userID, lines); err != nil {
			s.logger.Warn("failed to sync cart shadow",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}()
}

// WaitShadowSync blocks until all in-flight shadow writes finish. Called
// during shutdown so pending mirrors drain before the database closes.
func (s *Service) WaitShadowSync() {
	s.syncWG.Wait()
}
