package repository_test

import (
	"context"
	"fmt"
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

func setupRepos(t *testing.T) (*repository.Repository, *testutil.FakeCache, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestPostgres(t)

	if err := migrate.MigrateShopDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	fc := testutil.NewFakeCache()
	return repository.New(db, fc, time.Minute), fc, db
}

func TestUserRepo(t *testing.T) {
	repos, fc, db := setupRepos(t)
	ctx := context.Background()

	user := models.User{
		Username:  "ivan",
		Email:     "ivan@example.com",
		FirstName: "Ivan",
		LastName:  "Petrov",
	}
	if err := repos.Users.Create(ctx, &user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	// проверка на уникальность
	dup := models.User{Username: "ivan", Email: "other@example.com"}
	if err := repos.Users.Create(ctx, &dup); err == nil {
		t.Fatal("expected unique constraint error, got nil")
	}

	// первое чтение — промах, наполняет кэш
	got, err := repos.Users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to get user by ID: %v", err)
	}
	if got == nil || got.Username != "ivan" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if fc.Misses == 0 || fc.Sets == 0 {
		t.Fatal("expected cache miss and populate on first read")
	}

	// второе чтение — из кэша
	hitsBefore := fc.Hits
	if _, err := repos.Users.GetByID(ctx, user.ID); err != nil {
		t.Fatalf("failed to get cached user: %v", err)
	}
	if fc.Hits != hitsBefore+1 {
		t.Fatal("expected cache hit on second read")
	}

	if u, err := repos.Users.GetByEmail(ctx, "IVAN@example.com"); err != nil || u == nil {
		t.Fatalf("case-insensitive email lookup failed: %v, %+v", err, u)
	}

	// частичное обновление инвалидирует кэш
	if err := repos.Users.UpdateFields(ctx, user.ID, map[string]any{"first_name": "Pyotr"}); err != nil {
		t.Fatalf("failed to update user: %v", err)
	}
	if fc.Has(fmt.Sprintf("user:%d", user.ID)) {
		t.Fatal("expected cache entry to be invalidated after update")
	}
	got, err = repos.Users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to re-read user: %v", err)
	}
	if got.FirstName != "Pyotr" {
		t.Fatalf("partial update lost: got %q", got.FirstName)
	}
	if got.LastName != "Petrov" {
		t.Fatalf("untouched field overwritten: got %q", got.LastName)
	}

	// удаление пользователя каскадно удаляет адреса и чистит кэш
	addr := models.Address{UserID: user.ID, City: "Moscow", Street: "Tverskaya 1"}
	if err := db.Create(&addr).Error; err != nil {
		t.Fatalf("failed to create address: %v", err)
	}

	ok, err := repos.Users.Delete(ctx, user.ID)
	if err != nil || !ok {
		t.Fatalf("failed to delete user: %v", err)
	}

	if got, err := repos.Users.GetByID(ctx, user.ID); err != nil || got != nil {
		t.Fatalf("expected absent user after delete, got %+v (err %v)", got, err)
	}

	var addrCount int64
	if err := db.Model(&models.Address{}).Where("user_id = ?", user.ID).Count(&addrCount).Error; err != nil {
		t.Fatalf("failed to count addresses: %v", err)
	}
	if addrCount != 0 {
		t.Fatalf("expected addresses cascade-deleted, got %d", addrCount)
	}
}

func TestUserRepoPagination(t *testing.T) {
	repos, _, _ := setupRepos(t)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		u := models.User{
			Username: fmt.Sprintf("user%02d", i),
			Email:    fmt.Sprintf("user%02d@example.com", i),
		}
		if err := repos.Users.Create(ctx, &u); err != nil {
			t.Fatalf("failed to create user %d: %v", i, err)
		}
	}

	page1, err := repos.Users.GetByFilter(ctx, repository.UserFilter{}, 10, 1)
	if err != nil {
		t.Fatalf("failed to get page 1: %v", err)
	}
	if len(page1) != 10 {
		t.Fatalf("expected 10 users on page 1, got %d", len(page1))
	}

	page3, err := repos.Users.GetByFilter(ctx, repository.UserFilter{}, 10, 3)
	if err != nil {
		t.Fatalf("failed to get page 3: %v", err)
	}
	if len(page3) != 10 {
		t.Fatalf("expected 10 users on page 3, got %d", len(page3))
	}

	// страница далеко за пределами данных — пустой список, не ошибка
	page1000, err := repos.Users.GetByFilter(ctx, repository.UserFilter{}, 10, 1000)
	if err != nil {
		t.Fatalf("expected no error on out-of-range page, got %v", err)
	}
	if len(page1000) != 0 {
		t.Fatalf("expected empty page, got %d users", len(page1000))
	}
}

func TestUserRepoCacheDown(t *testing.T) {
	repos, fc, _ := setupRepos(t)
	ctx := context.Background()

	fc.Down = true

	user := models.User{Username: "down", Email: "down@example.com"}
	if err := repos.Users.Create(ctx, &user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	// с мёртвым кэшем все операции дают тот же результат
	got, err := repos.Users.GetByID(ctx, user.ID)
	if err != nil || got == nil {
		t.Fatalf("get with cache down failed: %v, %+v", err, got)
	}

	if err := repos.Users.UpdateFields(ctx, user.ID, map[string]any{"last_name": "X"}); err != nil {
		t.Fatalf("update with cache down failed: %v", err)
	}

	got, err = repos.Users.GetByID(ctx, user.ID)
	if err != nil || got == nil || got.LastName != "X" {
		t.Fatalf("re-read with cache down failed: %v, %+v", err, got)
	}

	if ok, err := repos.Users.Delete(ctx, user.ID); err != nil || !ok {
		t.Fatalf("delete with cache down failed: %v", err)
	}
	if got, err := repos.Users.GetByID(ctx, user.ID); err != nil || got != nil {
		t.Fatalf("expected absent after delete, got %+v (err %v)", got, err)
	}
}

func TestProductRepoStock(t *testing.T) {
	repos, fc, _ := setupRepos(t)
	ctx := context.Background()

	p := models.Product{Title: "Widget", PriceCents: 1000, QuantityTovar: 5}
	if err := repos.Products.Create(ctx, &p); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	// наполняем кэш
	if _, err := repos.Products.GetByID(ctx, p.ID); err != nil {
		t.Fatalf("failed to get product: %v", err)
	}

	// UpdateStock обновляет кэш свежим значением (refresh, не invalidate)
	updated, err := repos.Products.UpdateStock(ctx, p.ID, 42)
	if err != nil {
		t.Fatalf("failed to update stock: %v", err)
	}
	if updated.QuantityTovar != 42 {
		t.Fatalf("expected stock 42, got %d", updated.QuantityTovar)
	}

	got, err := repos.Products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("failed to re-read product: %v", err)
	}
	if got.QuantityTovar != 42 {
		t.Fatalf("stale stock after update: got %d, want 42", got.QuantityTovar)
	}

	// условное списание
	if ok, err := repos.Products.DecrementStock(ctx, p.ID, 40); err != nil || !ok {
		t.Fatalf("decrement failed: ok=%v err=%v", ok, err)
	}
	if ok, err := repos.Products.DecrementStock(ctx, p.ID, 3); err != nil || ok {
		t.Fatalf("expected decrement rejection at stock 2: ok=%v err=%v", ok, err)
	}

	repos.Products.RefreshCache(ctx, p.ID)
	got, err = repos.Products.GetByID(ctx, p.ID)
	if err != nil || got.QuantityTovar != 2 {
		t.Fatalf("expected stock 2, got %+v (err %v)", got, err)
	}

	// UpdateStock несуществующего продукта — absent, не ошибка
	if missing, err := repos.Products.UpdateStock(ctx, 999999, 1); err != nil || missing != nil {
		t.Fatalf("expected nil for missing product, got %+v (err %v)", missing, err)
	}

	if ok, err := repos.Products.Delete(ctx, p.ID); err != nil || !ok {
		t.Fatalf("failed to delete product: %v", err)
	}
	if fc.Has("product:1") {
		t.Fatal("expected cache entry removed after delete")
	}
	if got, err := repos.Products.GetByID(ctx, p.ID); err != nil || got != nil {
		t.Fatalf("expected absent product after delete, got %+v (err %v)", got, err)
	}
}

func TestProductRepoStaleCacheRefresh(t *testing.T) {
	repos, fc, _ := setupRepos(t)
	ctx := context.Background()

	p := models.Product{Title: "Gadget", PriceCents: 500, QuantityTovar: 10}
	if err := repos.Products.Create(ctx, &p); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	// кладём в кэш заведомо битый снапшот — чтение обязано пережить это
	fc.Put(fmt.Sprintf("product:%d", p.ID), []byte("{not json"))
	got, err := repos.Products.GetByID(ctx, p.ID)
	if err != nil || got == nil || got.QuantityTovar != 10 {
		t.Fatalf("read with corrupt cache failed: %+v (err %v)", got, err)
	}
}

func TestOrderRepoMembership(t *testing.T) {
	repos, _, db := setupRepos(t)
	ctx := context.Background()

	user := models.User{Username: "buyer", Email: "buyer@example.com"}
	if err := repos.Users.Create(ctx, &user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	addr := models.Address{UserID: user.ID, City: "Kazan", Street: "Bauman 1"}
	if err := db.Create(&addr).Error; err != nil {
		t.Fatalf("failed to create address: %v", err)
	}

	p1 := models.Product{Title: "A", PriceCents: 100, QuantityTovar: 5}
	p2 := models.Product{Title: "B", PriceCents: 200, QuantityTovar: 5}
	for _, p := range []*models.Product{&p1, &p2} {
		if err := repos.Products.Create(ctx, p); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	// дубликаты схлопываются, неизвестные id молча отбрасываются
	ord, err := repos.Orders.Create(ctx, user.ID, addr.ID, []int64{p1.ID, p1.ID, p2.ID, 999999})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if len(ord.Products) != 2 {
		t.Fatalf("expected product set of size 2, got %d", len(ord.Products))
	}

	// повторное добавление уже состоящего продукта — no-op
	ord2, err := repos.Orders.AddProduct(ctx, ord.ID, p1.ID)
	if err != nil {
		t.Fatalf("add product failed: %v", err)
	}
	if len(ord2.Products) != 2 {
		t.Fatalf("expected no-op add, got %d products", len(ord2.Products))
	}

	// добавление несуществующего продукта — no-op
	ord2, err = repos.Orders.AddProduct(ctx, ord.ID, 999999)
	if err != nil {
		t.Fatalf("add missing product failed: %v", err)
	}
	if len(ord2.Products) != 2 {
		t.Fatalf("expected no-op add of missing product, got %d", len(ord2.Products))
	}

	// удаление не-члена — no-op
	p3 := models.Product{Title: "C", PriceCents: 300}
	if err := repos.Products.Create(ctx, &p3); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	ord2, err = repos.Orders.RemoveProduct(ctx, ord.ID, p3.ID)
	if err != nil {
		t.Fatalf("remove non-member failed: %v", err)
	}
	if len(ord2.Products) != 2 {
		t.Fatalf("expected no-op remove, got %d", len(ord2.Products))
	}

	ord2, err = repos.Orders.RemoveProduct(ctx, ord.ID, p1.ID)
	if err != nil {
		t.Fatalf("remove member failed: %v", err)
	}
	if len(ord2.Products) != 1 {
		t.Fatalf("expected 1 product after remove, got %d", len(ord2.Products))
	}

	// пустой список продуктов — валидный заказ
	empty, err := repos.Orders.Create(ctx, user.ID, addr.ID, nil)
	if err != nil {
		t.Fatalf("failed to create empty order: %v", err)
	}
	if len(empty.Products) != 0 {
		t.Fatalf("expected empty product set, got %d", len(empty.Products))
	}

	byUser, err := repos.Orders.GetByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by user failed: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("expected 2 orders for user, got %d", len(byUser))
	}

	// удаление несуществующего заказа — no-op
	if err := repos.Orders.Delete(ctx, 999999); err != nil {
		t.Fatalf("expected no-op delete, got %v", err)
	}
	if err := repos.Orders.Delete(ctx, ord.ID); err != nil {
		t.Fatalf("delete order failed: %v", err)
	}
	if got, err := repos.Orders.GetByID(ctx, ord.ID); err != nil || got != nil {
		t.Fatalf("expected absent order after delete, got %+v (err %v)", got, err)
	}
}

func TestReportRepo(t *testing.T) {
	repos, _, db := setupRepos(t)
	ctx := context.Background()

	user := models.User{Username: "rep", Email: "rep@example.com"}
	if err := repos.Users.Create(ctx, &user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	addr := models.Address{UserID: user.ID, City: "Omsk", Street: "Lenina 1"}
	if err := db.Create(&addr).Error; err != nil {
		t.Fatalf("failed to create address: %v", err)
	}

	p1 := models.Product{Title: "A", PriceCents: 100, QuantityTovar: 5}
	p2 := models.Product{Title: "B", PriceCents: 200, QuantityTovar: 5}
	for _, p := range []*models.Product{&p1, &p2} {
		if err := repos.Products.Create(ctx, p); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	if _, err := repos.Orders.Create(ctx, user.ID, addr.ID, []int64{p1.ID, p2.ID}); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := repos.Orders.Create(ctx, user.ID, addr.ID, []int64{p1.ID}); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	today := time.Now()
	rows, err := repos.Reports.AggregateDay(ctx, today)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 aggregate rows, got %d", len(rows))
	}
	if rows[0].CountProduct != 2 || rows[1].CountProduct != 1 {
		t.Fatalf("unexpected counts: %+v", rows)
	}

	created, err := repos.Reports.BulkCreate(ctx, rows)
	if err != nil || created != 2 {
		t.Fatalf("bulk create failed: created=%d err=%v", created, err)
	}

	// повторный прогон за тот же день не плодит строк
	rows2, err := repos.Reports.AggregateDay(ctx, today)
	if err != nil {
		t.Fatalf("re-aggregate failed: %v", err)
	}
	created2, err := repos.Reports.BulkCreate(ctx, rows2)
	if err != nil {
		t.Fatalf("second bulk create failed: %v", err)
	}
	if created2 != 0 {
		t.Fatalf("expected idempotent report build, created %d rows", created2)
	}

	got, err := repos.Reports.GetByDate(ctx, today)
	if err != nil {
		t.Fatalf("get by date failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 report rows, got %d", len(got))
	}
}

func TestEventRepo(t *testing.T) {
	repos, _, _ := setupRepos(t)
	ctx := context.Background()

	id := uuid.New()
	first, err := repos.Events.MarkConsumed(ctx, id)
	if err != nil || !first {
		t.Fatalf("first consume failed: first=%v err=%v", first, err)
	}

	again, err := repos.Events.MarkConsumed(ctx, id)
	if err != nil {
		t.Fatalf("second consume errored: %v", err)
	}
	if again {
		t.Fatal("expected duplicate event to be detected")
	}
}
