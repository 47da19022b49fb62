package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrDatabaseDisabled is returned when the token store does not use a database
var ErrDatabaseDisabled = errors.New("database not configured")

// tokenDB is the connection behind TOKEN_STORE=db; nil for other stores
var tokenDB *gorm.DB

// DSN returns the MySQL connection string
func (d DatabaseConfig) DSN() string {
	c := mysqldriver.NewConfig()
	c.User = d.User
	c.Passwd = d.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(d.Host, d.Port)
	c.DBName = d.DBName
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// ConnectDatabase opens the token database
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	level := logger.Error
	if cfg.IsDev() {
		level = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to token database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// One terminal, a handful of token reads per minute.
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping token database: %w", err)
	}

	tokenDB = db
	log.Printf("✅ Token database connected [%s/%s]", net.JoinHostPort(cfg.Database.Host, cfg.Database.Port), cfg.Database.DBName)
	return db, nil
}

// CloseDatabase closes the token database if one is open
func CloseDatabase() error {
	if tokenDB == nil {
		return nil
	}
	sqlDB, err := tokenDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck pings the token database
func HealthCheck() error {
	if tokenDB == nil {
		return ErrDatabaseDisabled
	}
	sqlDB, err := tokenDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
