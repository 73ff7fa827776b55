package db

import (
	"errors"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	MySQLDSN   string
	SQLiteFile string
	Debug      bool
}

// Open connects to MySQL when a DSN is given, SQLite otherwise
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case cfg.MySQLDSN != "":
		dialector = mysql.Open(cfg.MySQLDSN)
	case cfg.SQLiteFile != "":
		dialector = sqlite.Open(sqliteDSN(cfg.SQLiteFile))
	default:
		return nil, errors.New("no database configured")
	}
	gormConfig := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.MySQLDSN != "",
		Logger:                 logger.Default.LogMode(logger.Warn),
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}
	if cfg.MySQLDSN == "" {
		// SQLite allows a single writer; an in-memory database also lives
		// only as long as its one connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func sqliteDSN(file string) string {
	if strings.Contains(file, "?") {
		return file + "&_foreign_keys=on"
	}
	return file + "?_foreign_keys=on"
}
