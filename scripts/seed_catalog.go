package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bstn/internal/catalog"
	"bstn/internal/database"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		catalogPath = flag.String("catalog", "configs/catalog.yaml", "path to catalog.yaml")
		dbPath      = flag.String("db", "./data/bstn.db", "path to sqlite db")
	)
	flag.Parse()

	c, err := catalog.Load(*catalogPath)
	if err != nil {
		return err
	}
	if len(c.Users) == 0 && len(c.Stays) == 0 {
		return fmt.Errorf("catalog %s is empty", *catalogPath)
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := c.Apply(ctx, db, &logger)
	if err != nil {
		return err
	}

	fmt.Printf("done: users=%d providers=%d stays=%d rooms=%d\n", res.Users, res.Providers, res.Stays, res.Rooms)
	return nil
}
