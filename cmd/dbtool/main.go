package main

import (
	"flag"
	"hos-trip-service/internal/adapters/repositories"
	"hos-trip-service/internal/config"
	"hos-trip-service/internal/platform/db"
	"log"
)

// dbtool creates the schema and optionally preloads the distance cache,
// for databases the server should not migrate on startup.
func main() {
	config.LoadDotEnv()

	driver := flag.String("driver", config.Get("DB_DRIVER", "pgx"), "database driver (pgx or sqlite)")
	url := flag.String("database-url", config.Get("DATABASE_URL", ""), "database connection string")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/distances.json"), "distance seed file, empty to skip")
	flag.Parse()

	if *url == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(*driver, *url)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *seedPath == "" {
		return
	}

	log.Println("Seeding distance cache...")
	n, err := repositories.SeedDistancesFromJSON(conn, *seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. rows=%d", n)
}
