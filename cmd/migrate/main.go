package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/almacen-api/pkg/config"
)

// Aplica las migraciones SQL de ./migrations con goose.
// Uso: migrate [-dir ./migrations] [up|down|status|version ...]
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("migrate: cargar configuración: %v", err)
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./migrations", "directorio con los archivos de migración")
	flag.Parse()

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatalf("migrate: abrir conexión: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("migrate: cerrar conexión: %v", err)
		}
	}()

	if err := db.Ping(); err != nil {
		log.Fatalf("migrate: ping a la BD: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("migrate: dialecto: %v", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s: ok\n", command)
}
