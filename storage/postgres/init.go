package postgres

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// InitDB 初始化 PG 连接
// dsn 格式: "host=localhost user=postgres password=root dbname=mydb port=5432 sslmode=disable"
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db failed: %w", err)
	}

	// 设置连接池（生产环境必备）
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Vendor{}, &PurchaseOrder{}, &Invoice{}, &AuditLog{}, &LedgerEntry{}); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	log.Println("PostgreSQL connected successfully")
	return db, nil
}

// Seed 写入演示用的供应商和采购订单（幂等，冲突跳过）
func Seed(db *gorm.DB) error {
	vendors := []Vendor{
		// typical_price 是异常检测基线
		{VendorID: 101, Name: "TechSupplies Ltd", TrustScore: 95, TypicalPrice: 5000.0},
		{VendorID: 102, Name: "Office Coffee Co", TrustScore: 80, TypicalPrice: 1000.0},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&vendors).Error; err != nil {
		return fmt.Errorf("seed vendors failed: %w", err)
	}

	orders := []PurchaseOrder{
		{PONumber: "PO-001", VendorID: 101, ItemDescription: "MacBook Pro M3", Quantity: 5, AgreedPricePerUnit: 1000.0, TotalAmount: 5000.0, Status: "OPEN"},
		{PONumber: "PO-002", VendorID: 102, ItemDescription: "Premium Coffee Beans", Quantity: 100, AgreedPricePerUnit: 10.0, TotalAmount: 1000.0, Status: "OPEN"},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&orders).Error; err != nil {
		return fmt.Errorf("seed purchase orders failed: %w", err)
	}

	log.Println("✅ 参考数据 seed 完成 (vendors + purchase_orders)")
	return nil
}
