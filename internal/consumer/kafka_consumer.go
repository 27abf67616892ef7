package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/repository"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ProductEvent — событие канала product: upsert продукта по id.
type ProductEvent struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	PriceCents    int64  `json:"price_cents"`
	QuantityTovar int64  `json:"quantity_tovar"`
}

// OrderEvent — событие канала order: заказ со списанием по 1 шт. на товар.
// EventID — клиентский ключ идемпотентности; без него повторная доставка
// не детектируется.
type OrderEvent struct {
	EventID           uuid.UUID `json:"event_id"`
	UserID            int64     `json:"user_id"`
	ShippingAddressID int64     `json:"shipping_address_id"`
	ProductIDs        []int64   `json:"product_ids"`
}

type StockConsumer struct {
	productReader *kafka.Reader
	orderReader   *kafka.Reader
	repo          *repository.Repository
	log           *zap.Logger
}

func newReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
}

func NewStockConsumer(brokers []string, groupID, productTopic, orderTopic string, repo *repository.Repository, log *zap.Logger) *StockConsumer {
	return &StockConsumer{
		productReader: newReader(brokers, groupID, productTopic),
		orderReader:   newReader(brokers, groupID, orderTopic),
		repo:          repo,
		log:           log,
	}
}

func (c *StockConsumer) Run(ctx context.Context) error {
	c.log.Info("stock consumer started")

	errCh := make(chan error, 2)
	go func() { errCh <- c.runProductLoop(ctx) }()
	go func() { errCh <- c.runOrderLoop(ctx) }()

	// оба цикла завершаются только по отмене контекста
	err := <-errCh
	<-errCh
	return err
}

func (c *StockConsumer) runProductLoop(ctx context.Context) error {
	for {
		m, err := c.productReader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("read product message", zap.Error(err))
			continue
		}

		var ev ProductEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.log.Error("unmarshal product event", zap.ByteString("value", m.Value), zap.Error(err))
			continue
		}
		if ev.ID == 0 {
			c.log.Warn("invalid product event", zap.Any("event", ev))
			continue
		}

		if err := c.handleProduct(ctx, ev); err != nil {
			c.log.Error("product upsert failed", zap.Int64("product_id", ev.ID), zap.Error(err))
			continue
		}
		c.log.Info("product upserted", zap.Int64("product_id", ev.ID), zap.Int64("stock", ev.QuantityTovar))
	}
}

func (c *StockConsumer) runOrderLoop(ctx context.Context) error {
	for {
		m, err := c.orderReader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("read order message", zap.Error(err))
			continue
		}

		var ev OrderEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.log.Error("unmarshal order event", zap.ByteString("value", m.Value), zap.Error(err))
			continue
		}

		orderID, err := c.handleOrder(ctx, ev)
		if err != nil {
			// отклонение — не ошибка потребителя: логируем и едем дальше
			c.log.Warn("order event rejected", zap.Int64s("product_ids", ev.ProductIDs), zap.Error(err))
			continue
		}
		if orderID != 0 {
			c.log.Info("order created from event", zap.Int64("order_id", orderID), zap.Int64s("product_ids", ev.ProductIDs))
		}
	}
}

// handleProduct идемпотентен: повторное событие приводит к тому же состоянию.
func (c *StockConsumer) handleProduct(ctx context.Context, ev ProductEvent) error {
	if err := c.repo.Products.Upsert(ctx, &models.Product{
		ID:            ev.ID,
		Title:         ev.Title,
		PriceCents:    ev.PriceCents,
		QuantityTovar: ev.QuantityTovar,
	}); err != nil {
		return err
	}
	c.repo.Products.RefreshCache(ctx, ev.ID)
	return nil
}

// handleOrder: валидация всех товаров, затем заказ и списание по 1 шт. —
// одной транзакцией. Любое отклонение не оставляет частичного эффекта.
// Возвращает 0 без ошибки, если событие уже обрабатывалось (дубликат event_id).
func (c *StockConsumer) handleOrder(ctx context.Context, ev OrderEvent) (int64, error) {
	if len(ev.ProductIDs) == 0 {
		return 0, fmt.Errorf("empty product_ids")
	}

	var orderID int64
	duplicate := false

	err := c.repo.WithTx(func(tx *repository.Repository) error {
		if ev.EventID != uuid.Nil {
			first, err := tx.Events.MarkConsumed(ctx, ev.EventID)
			if err != nil {
				return err
			}
			if !first {
				duplicate = true
				return nil
			}
		} else {
			c.log.Warn("order event without event_id, redelivery is not deduplicated")
		}

		products, err := tx.Products.BatchGetByIDs(ctx, ev.ProductIDs)
		if err != nil {
			return err
		}

		found := make(map[int64]models.Product, len(products))
		for _, p := range products {
			found[p.ID] = p
		}
		for _, pid := range ev.ProductIDs {
			p, ok := found[pid]
			if !ok {
				return fmt.Errorf("product %d not found", pid)
			}
			if p.QuantityTovar <= 0 {
				return fmt.Errorf("product %d out of stock", pid)
			}
		}

		ord, err := tx.Orders.Create(ctx, ev.UserID, ev.ShippingAddressID, ev.ProductIDs)
		if err != nil {
			return err
		}
		orderID = ord.ID

		for _, p := range ord.Products {
			ok, err := tx.Products.DecrementStock(ctx, p.ID, 1)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("product %d out of stock", p.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if duplicate {
		c.log.Info("duplicate order event skipped", zap.String("event_id", ev.EventID.String()))
		return 0, nil
	}

	if orderID != 0 {
		for _, pid := range ev.ProductIDs {
			c.repo.Products.RefreshCache(ctx, pid)
		}
	}
	return orderID, nil
}

func (c *StockConsumer) Close() error {
	perr := c.productReader.Close()
	oerr := c.orderReader.Close()
	if perr != nil {
		return perr
	}
	return oerr
}
