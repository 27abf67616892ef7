package migrate

import (
	"context"

	"shop-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateChecks    bool // CHECK-constraint для целостности
	CreateIndexes   bool // индексы и UNIQUE
	CreateFKsViaSQL bool // FK через SQL (поверх GORM-constraint)
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateChecks:    true,
		CreateIndexes:   true,
		CreateFKsViaSQL: true,
	}
}

func MigrateShopDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных магазина")

	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.Order{},
		&models.OrderReport{},
		&models.ConsumedEvent{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}
	log.Info("Таблицы успешно созданы")

	if opt.CreateChecks {
		// Остаток не может быть отрицательным
		if err := db.Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_quantity_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_quantity_non_negative
  CHECK (quantity_tovar >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для products.quantity_tovar", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_price_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_price_non_negative
  CHECK (price_cents >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для products.price_cents", zap.Error(err))
			return err
		}
		log.Info("CHECK-ограничения успешно созданы")
	}

	if opt.CreateIndexes {
		// Один отчётный ряд на (день, заказ)
		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_order_reports_day_order
ON order_reports (report_at, order_id);
`).Error; err != nil {
			log.Error("Не удалось создать уникальный индекс ux_order_reports_day_order", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_user_created
ON orders (user_id, created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_orders_user_created", zap.Error(err))
			return err
		}
		log.Info("Индексы успешно созданы")
	}

	if opt.CreateFKsViaSQL {
		// addresses.user_id -> users.id (CASCADE: адреса умирают вместе с пользователем)
		if err := db.Exec(`
ALTER TABLE addresses
  DROP CONSTRAINT IF EXISTS fk_addresses_user,
  ADD CONSTRAINT fk_addresses_user
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK addresses.user_id -> users.id", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_user,
  ADD CONSTRAINT fk_orders_user
    FOREIGN KEY (user_id) REFERENCES users(id);
`).Error; err != nil {
			log.Error("Не удалось создать FK orders.user_id -> users.id", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_shipping_address,
  ADD CONSTRAINT fk_orders_shipping_address
    FOREIGN KEY (shipping_address_id) REFERENCES addresses(id);
`).Error; err != nil {
			log.Error("Не удалось создать FK orders.shipping_address_id -> addresses.id", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS fk_order_products_order,
  ADD CONSTRAINT fk_order_products_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK order_products.order_id -> orders.id", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE order_reports
  DROP CONSTRAINT IF EXISTS fk_order_reports_order,
  ADD CONSTRAINT fk_order_reports_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK order_reports.order_id -> orders.id", zap.Error(err))
			return err
		}
		log.Info("Внешние ключи успешно созданы")
	}

	log.Info("Миграция базы данных магазина успешно завершена")
	return nil
}
