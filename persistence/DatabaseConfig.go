package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv reads DATABASE_URL in the form
// "mysql://root:root@(127.0.0.1:3306)/annoflow?charset=utf8mb4&parseTime=True&loc=Local"
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("environment variable DATABASE_URL is not set")
	}
	idx := strings.Index(databaseURL, "://")
	if idx <= 0 || idx >= len(databaseURL)-3 {
		return nil, errors.New("invalid DATABASE_URL: " + databaseURL)
	}
	return &DatabaseConfig{DriverType: databaseURL[0:idx], DriverArgs: databaseURL[idx+3:]}, nil
}

// PrepareMysqlDatabase creates the target database if it does not exist yet.
func PrepareMysqlDatabase(driverArgs string) error {
	idx := strings.Index(driverArgs, "/")
	if idx < 0 {
		return errors.New("invalid database connection string: " + driverArgs)
	}
	hostPart := driverArgs[0 : idx+1]
	namePart := driverArgs[idx+1:]
	if paramIdx := strings.Index(namePart, "?"); paramIdx >= 0 {
		namePart = namePart[0:paramIdx]
	}
	if namePart == "" {
		return errors.New("database name is missing: " + driverArgs)
	}

	conn, err := sql.Open("mysql", hostPart)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Exec("CREATE DATABASE IF NOT EXISTS `" + namePart + "` CHARACTER SET utf8mb4")
	return err
}
