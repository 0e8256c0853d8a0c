package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"BatallaMedieval/internal/shared/config"
	"BatallaMedieval/internal/shared/logs"
)

// Open 按配置选择驱动：mysql 用于正式分片，sqlite 用于单机/本地世界。
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logs.NewGormLogger(logger.Info, 200*time.Millisecond),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "", "mysql":
		// username:password@protocol(address)/dbname?charset=utf8&parseTime=True&loc=Local
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
		)
		db, err = gorm.Open(mysql.Open(dsn), gcfg)
	case "sqlite":
		file := cfg.File
		if file == "" {
			file = "batalla_medieval.db"
		}
		db, err = gorm.Open(sqlite.Open(file), gcfg)
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConn)
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)

	logs.Info("open db success",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.String("db", cfg.DBName),
	)
	return db, nil
}
