package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/spokeworks/wheelsmith/internal/api"
	"github.com/spokeworks/wheelsmith/internal/seed"
	"github.com/spokeworks/wheelsmith/internal/store"
)

type CLI struct {
	DB             string `name:"db" default:"data/wheelsmith.db" env:"WHEELSMITH_DB" help:"Path to SQLite database."`
	Port           string `default:"8080" env:"WHEELSMITH_PORT" help:"HTTP server port."`
	Calibration    string `default:"data/calibration_tables.json" env:"WHEELSMITH_CALIBRATION" help:"Calibration source, a local path or http(s) URL."`
	SeedComponents bool   `env:"WHEELSMITH_SEED_COMPONENTS" help:"Seed the sample component library into an empty database."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("wheelsmith"),
		kong.Description("Wheel building tracker with a spoke tension measurement engine."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	data, err := seed.LoadCalibration(cli.Calibration)
	if err != nil {
		log.Fatalf("load calibration: %v", err)
	}
	if _, err := seed.SpokeTypes(st, data); err != nil {
		log.Fatalf("seed spoke types: %v", err)
	}

	if cli.SeedComponents {
		if err := seed.Components(st); err != nil {
			log.Fatalf("seed components: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(st, cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
