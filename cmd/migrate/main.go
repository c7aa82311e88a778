package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"activitylog/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	resetPrefs := flag.Bool("reset-preferences", false, "delete the stored filter preferences after migrating")
	key := flag.String("key", "", "preferences key (default activity-log-preferences)")
	flag.Parse()

	godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatal("Failed to connect: ", err)
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db.Pool)
	if err != nil {
		log.Fatal(err)
	}
	for _, file := range applied {
		log.Printf("✓ %s", file)
	}

	if *resetPrefs {
		if err := database.NewPreferenceStore(db, *key).DeletePreferences(ctx); err != nil {
			log.Fatal(err)
		}
		log.Print("Preferences reset")
	}

	fmt.Println("\nAll migrations completed!")
}
