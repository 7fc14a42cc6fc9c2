package database

import (
	"testing"

	"appointment-system/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	cfg := config.DBConfig{
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "secret",
		Name:     "appointments",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db user=app password=secret dbname=appointments port=5432 sslmode=require TimeZone=Asia/Jakarta",
		BuildDSN(cfg, "Asia/Jakarta"),
	)
}

func TestBuildDSNDefaults(t *testing.T) {
	dsn := BuildDSN(config.DBConfig{Host: "localhost", Port: "5432"}, "")

	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "TimeZone=UTC")
}
