package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Settings names the MySQL endpoint.
type Settings struct {
	User, Pass, Host, Port, Name string
	PingTimeout                  time.Duration
}

// DSN builds the driver DSN.  parseTime=true turns DATETIME into time.Time
// and loc=Local keeps the wall-clock times operators type into forms.  The
// session time_zone is pinned to the same offset so NOW() inside the stored
// procedures agrees with the times the console writes.
func (s Settings) DSN() string {
	c := mysql.NewConfig()
	c.User = s.User
	c.Passwd = s.Pass
	c.Net = "tcp"
	c.Addr = s.Host + ":" + s.Port
	c.DBName = s.Name
	c.ParseTime = true
	c.Loc = time.Local
	c.Params = map[string]string{
		"charset":   "utf8mb4",
		"time_zone": "'" + zoneOffset(time.Now()) + "'",
	}
	return c.FormatDSN()
}

// zoneOffset renders t's UTC offset as MySQL expects it, e.g. +05:30.
func zoneOffset(t time.Time) string {
	_, secs := t.Zone()
	sign := '+'
	if secs < 0 {
		sign, secs = '-', -secs
	}
	return fmt.Sprintf("%c%02d:%02d", sign, secs/3600, secs%3600/60)
}

// Open connects to MySQL and verifies the connection.  Idle connections are
// not kept: every console interaction gets a fresh connection that is closed
// when the interaction releases it.
func Open(s Settings) (*sql.DB, error) {
	db, err := sql.Open("mysql", s.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(0)
	db.SetMaxOpenConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)

	timeout := s.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", s.Host, err)
	}
	return db, nil
}
