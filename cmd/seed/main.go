package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Seeds a small demo catalog so the frontend has something to sell.
func main() {
	_ = godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		INSERT INTO products (code, name, price, retail_price, stock) VALUES
		('F100', 'Rocket',          50.00,  70.00,  20),
		('F101', 'Sky Shot',        120.00, 150.00, 40),
		('F200', 'Flower Pot Big',  30.00,  45.00,  100),
		('F201', 'Flower Pot Small',15.00,  25.00,  150),
		('S10',  'Sparkler 10cm',   8.00,   12.00,  500),
		('S30',  'Sparkler 30cm',   20.00,  30.00,  300),
		('G5',   'Ground Chakkar',  10.00,  18.00,  200)
		ON CONFLICT (code) DO NOTHING;
	`)
	if err != nil {
		fmt.Printf("Seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Seed successful.")
}
