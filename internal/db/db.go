package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite 单机版，数据存放在本地 sqlite 文件。
	DriverSQLite = "sqlite"
	// DriverPostgres 群组版，多人共享同一个 postgres 库并通过 NOTIFY 推送变更。
	DriverPostgres = "postgres"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options 描述打开数据库所需的参数。
type Options struct {
	Driver string
	Path   string
	DSN    string
	Silent bool
}

// Init 初始化数据库连接并执行自动迁移。
// sqlite 模式下 Path 为空时回退到默认值 bobalog.db。
func Init(opts Options) error {
	gdb, err := Open(opts)
	if err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 打开连接并迁移，不修改全局 DB，方便测试使用独立实例。
func Open(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if opts.Silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "bobalog.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(path)
	case DriverPostgres:
		dsn := strings.TrimSpace(opts.DSN)
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Migrate 为核心模型建表；postgres 额外安装变更通知触发器。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&DrinkRecord{},
		&UserConfig{},
		&SystemSetting{},
	); err != nil {
		return err
	}

	if gdb.Dialector.Name() == DriverPostgres {
		if err := installChangeTrigger(gdb); err != nil {
			return fmt.Errorf("install change trigger: %w", err)
		}
	}

	return nil
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
