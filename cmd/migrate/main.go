// Command migrate installs the console schema: the four tables, the
// booking and release procedures and the pending-payment triggers.
//
//	migrate            apply every step
//	migrate -list      print the step names
//	migrate -hash pw   print a bcrypt hash for CONSOLE_PASSWORD_HASH
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/parking-console/internal/config"
	"github.com/iliyamo/parking-console/internal/database"
	"github.com/iliyamo/parking-console/internal/logger"
	"github.com/iliyamo/parking-console/internal/utils"
)

func main() {
	list := flag.Bool("list", false, "print migration steps and exit")
	hash := flag.String("hash", "", "print a bcrypt hash of the given password and exit")
	flag.Parse()

	if *hash != "" {
		h, err := utils.HashPassword(*hash, 0)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}
	if *list {
		steps, err := database.Steps()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, s := range steps {
			fmt.Println(s.Name)
		}
		return
	}

	_ = godotenv.Load()
	cfg := config.LoadDatabase()
	log := logger.InitLogger(cfg.LogLevel)

	db, err := database.Open(database.Settings{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		PingTimeout: cfg.DBTimeout,
	})
	if err != nil {
		log.WithErr(err).Fatal("database unavailable")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db, log); err != nil {
		log.WithErr(err).Fatal("migration failed")
	}
	log.Info("schema up to date")
}
