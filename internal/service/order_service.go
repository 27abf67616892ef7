package service

import (
	"context"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/repository"

	"go.uber.org/zap"
)

var _ OrderService = (*orderService)(nil)

type orderService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewOrderService(repo *repository.Repository, log *zap.Logger) *orderService {
	return &orderService{repo: repo, log: log}
}

// PlaceOrder валидирует ВСЕ позиции до любых списаний: частично потреблённый
// заказ не наблюдаем ни при какой ошибке. Гонку check-then-decrement закрывает
// условный UPDATE в DecrementStock — при нехватке остатка транзакция
// откатывается целиком вместе с заказом.
func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}

	// Дубликаты product_id в запросе складываем в одну позицию
	wanted := make(map[int64]int64, len(in.Items))
	orderIDs := make([]int64, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if _, seen := wanted[it.ProductID]; !seen {
			orderIDs = append(orderIDs, it.ProductID)
		}
		wanted[it.ProductID] += it.Quantity
	}

	user, err := s.repo.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var (
		orderID    int64
		totalCents int64
	)

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		// Авторитетное чтение из БД, мимо кэша
		products, err := tx.Products.BatchGetByIDs(ctx, orderIDs)
		if err != nil {
			return err
		}
		byID := make(map[int64]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		for _, pid := range orderIDs {
			p, ok := byID[pid]
			if !ok {
				return fmt.Errorf("%w: product %d", ErrProductNotFound, pid)
			}
			if wanted[pid] > p.QuantityTovar {
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, pid)
			}
			totalCents += p.PriceCents * wanted[pid]
		}

		// Все позиции прошли валидацию — фиксируем заказ и списываем остатки
		ord, err := tx.Orders.Create(ctx, in.UserID, in.ShippingAddressID, orderIDs)
		if err != nil {
			return err
		}
		orderID = ord.ID

		for _, pid := range orderIDs {
			ok, err := tx.Products.DecrementStock(ctx, pid, wanted[pid])
			if err != nil {
				return err
			}
			if !ok {
				// конкурирующее списание успело раньше — откат всего заказа
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, pid)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Кэш обновляем только после коммита, best effort
	for _, pid := range orderIDs {
		s.repo.Products.RefreshCache(ctx, pid)
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.log.Info("order placed",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", in.UserID),
		zap.Int64("total_cents", totalCents),
		zap.Int("positions", len(orderIDs)))

	return &PlaceOrderResult{Order: ord, TotalCents: totalCents}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, userID, shippingAddressID int64, productIDs []int64) (*models.Order, error) {
	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.repo.Orders.Create(ctx, userID, shippingAddressID, productIDs)
}

func (s *orderService) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) GetAll(ctx context.Context) ([]models.Order, error) {
	return s.repo.Orders.GetAll(ctx)
}

func (s *orderService) GetByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.repo.Orders.GetByUser(ctx, userID)
}

func (s *orderService) AddProduct(ctx context.Context, orderID, productID int64) (*models.Order, error) {
	ord, err := s.repo.Orders.AddProduct(ctx, orderID, productID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) RemoveProduct(ctx context.Context, orderID, productID int64) (*models.Order, error) {
	ord, err := s.repo.Orders.RemoveProduct(ctx, orderID, productID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) Delete(ctx context.Context, orderID int64) error {
	return s.repo.Orders.Delete(ctx, orderID)
}
