package consumer

import (
	"context"
	"testing"
	"time"

	"shop-service/internal/migrate"
	"shop-service/internal/models"
	"shop-service/internal/repository"
	"shop-service/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupConsumer(t *testing.T) (*StockConsumer, *repository.Repository, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateShopDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	repos := repository.New(db, testutil.NewFakeCache(), time.Minute)
	// ридеры не нужны: обработчики тестируем напрямую
	c := &StockConsumer{repo: repos, log: zap.NewNop()}
	return c, repos, db
}

func seedOrderEventFixtures(t *testing.T, repos *repository.Repository, db *gorm.DB, stock int64) (models.User, models.Address, models.Product) {
	t.Helper()
	ctx := context.Background()

	user := models.User{Username: "queue", Email: "queue@example.com"}
	if err := repos.Users.Create(ctx, &user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	addr := models.Address{UserID: user.ID, City: "Tula", Street: "Mira 2"}
	if err := db.Create(&addr).Error; err != nil {
		t.Fatalf("failed to create address: %v", err)
	}
	p := models.Product{Title: "Queued", PriceCents: 900, QuantityTovar: stock}
	if err := repos.Products.Create(ctx, &p); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return user, addr, p
}

func TestHandleProductUpsert(t *testing.T) {
	c, repos, _ := setupConsumer(t)
	ctx := context.Background()

	ev := ProductEvent{ID: 42, Title: "New", PriceCents: 1500, QuantityTovar: 3}
	if err := c.handleProduct(ctx, ev); err != nil {
		t.Fatalf("handle product failed: %v", err)
	}

	got, err := repos.Products.GetByID(ctx, 42)
	if err != nil || got == nil {
		t.Fatalf("product not created: %+v (err %v)", got, err)
	}
	if got.Title != "New" || got.QuantityTovar != 3 {
		t.Fatalf("unexpected product: %+v", got)
	}

	// повторное событие с новыми полями перезаписывает существующий
	ev.Title = "Renamed"
	ev.QuantityTovar = 9
	if err := c.handleProduct(ctx, ev); err != nil {
		t.Fatalf("repeat handle product failed: %v", err)
	}
	got, err = repos.Products.GetByID(ctx, 42)
	if err != nil || got == nil {
		t.Fatalf("product lost after upsert: %v", err)
	}
	if got.Title != "Renamed" || got.QuantityTovar != 9 {
		t.Fatalf("upsert did not overwrite: %+v", got)
	}
}

func TestHandleOrder(t *testing.T) {
	c, repos, db := setupConsumer(t)
	ctx := context.Background()

	user, addr, p := seedOrderEventFixtures(t, repos, db, 5)

	// дубликаты product_ids схлопываются — списание по 1 шт. на товар
	orderID, err := c.handleOrder(ctx, OrderEvent{
		EventID:           uuid.New(),
		UserID:            user.ID,
		ShippingAddressID: addr.ID,
		ProductIDs:        []int64{p.ID, p.ID},
	})
	if err != nil || orderID == 0 {
		t.Fatalf("handle order failed: id=%d err=%v", orderID, err)
	}

	ord, err := repos.Orders.GetByID(ctx, orderID)
	if err != nil || ord == nil {
		t.Fatalf("order not found: %v", err)
	}
	if len(ord.Products) != 1 {
		t.Fatalf("expected 1 product in order, got %d", len(ord.Products))
	}

	var stock models.Product
	if err := db.First(&stock, p.ID).Error; err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	if stock.QuantityTovar != 4 {
		t.Fatalf("expected stock 4, got %d", stock.QuantityTovar)
	}
}

func TestHandleOrderRejections(t *testing.T) {
	c, repos, db := setupConsumer(t)
	ctx := context.Background()

	user, addr, p := seedOrderEventFixtures(t, repos, db, 0)

	if _, err := c.handleOrder(ctx, OrderEvent{UserID: user.ID, ShippingAddressID: addr.ID}); err == nil {
		t.Fatal("expected rejection of empty product_ids")
	}

	// товар без остатка
	if _, err := c.handleOrder(ctx, OrderEvent{
		UserID: user.ID, ShippingAddressID: addr.ID, ProductIDs: []int64{p.ID},
	}); err == nil {
		t.Fatal("expected rejection of out-of-stock product")
	}

	// неизвестный товар
	if _, err := c.handleOrder(ctx, OrderEvent{
		UserID: user.ID, ShippingAddressID: addr.ID, ProductIDs: []int64{999999},
	}); err == nil {
		t.Fatal("expected rejection of unknown product")
	}

	var n int64
	if err := db.Model(&models.Order{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	if n != 0 {
		t.Fatalf("rejected events must not leave orders, got %d", n)
	}
}

func TestHandleOrderDeduplicatesByEventID(t *testing.T) {
	c, repos, db := setupConsumer(t)
	ctx := context.Background()

	user, addr, p := seedOrderEventFixtures(t, repos, db, 5)

	ev := OrderEvent{
		EventID:           uuid.New(),
		UserID:            user.ID,
		ShippingAddressID: addr.ID,
		ProductIDs:        []int64{p.ID},
	}

	first, err := c.handleOrder(ctx, ev)
	if err != nil || first == 0 {
		t.Fatalf("first delivery failed: id=%d err=%v", first, err)
	}

	// повторная доставка того же event_id — без эффекта и без ошибки
	second, err := c.handleOrder(ctx, ev)
	if err != nil {
		t.Fatalf("redelivery errored: %v", err)
	}
	if second != 0 {
		t.Fatalf("redelivery created order %d", second)
	}

	var n int64
	if err := db.Model(&models.Order{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 order, got %d", n)
	}

	var stock models.Product
	if err := db.First(&stock, p.ID).Error; err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	if stock.QuantityTovar != 4 {
		t.Fatalf("expected single decrement, stock %d", stock.QuantityTovar)
	}
}
