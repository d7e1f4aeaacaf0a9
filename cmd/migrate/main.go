package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"velora_back_end/internal/config"
)

func main() {
	config.Load()

	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		log.Fatal("usage: migrate <up|down|version>")
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		log.Fatal("❌ POSTGRES_URL manquant dans .env")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}

	m, err := migrate.New(migrationsPath, postgresURL)
	if err != nil {
		log.Fatalf("❌ Erreur initialisation migrations: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	switch args[0] {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("✅ Aucune migration en attente")
			return
		}
		if err != nil {
			log.Fatalf("❌ Migration up échouée: %v", err)
		}
		log.Println("✅ Migrations appliquées")

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("✅ Aucune migration à annuler")
			return
		}
		if err != nil {
			log.Fatalf("❌ Migration down échouée: %v", err)
		}
		log.Println("✅ Migration annulée")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("Aucune migration appliquée")
			return
		}
		if err != nil {
			log.Fatalf("❌ Erreur lecture version: %v", err)
		}
		log.Printf("Version courante: %d (dirty=%v)", version, dirty)

	default:
		log.Fatalf("❌ Commande inconnue: %s", args[0])
	}
}
