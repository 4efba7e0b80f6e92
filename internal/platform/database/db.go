package database

import (
	"fmt"
	"log"
	"os"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New 打开本地SQLite数据库并返回句柄。
// 句柄在进程启动时构造一次，之后显式传递给所有消费者，不提供包级全局变量。
func New(cfg config.SqliteConfig) (*gorm.DB, error) {
	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("连接SQLite数据库失败: %w", err)
	}

	fmt.Println("数据库连接成功！")
	return db, nil
}
