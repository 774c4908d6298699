package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Bootstraps the first admin account. The API refuses user management without
// an authenticated admin, so this runs once against a fresh database.
func main() {
	fmt.Println("========================================")
	fmt.Println("   Create Admin Account")
	fmt.Println("========================================")
	fmt.Println()

	godotenv.Load()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "fare_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Admin name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Admin email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" {
		log.Fatal("Name and email are required")
	}

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimRight(password, "\r\n")
	if len(password) < 8 {
		log.Fatal("Password must be at least 8 characters")
	}

	fmt.Print("Confirm password: ")
	confirm, _ := reader.ReadString('\n')
	confirm = strings.TrimRight(confirm, "\r\n")
	if password != confirm {
		log.Fatal("Passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatalf("Failed to hash password: %v\n", err)
	}

	ctx := context.Background()
	var id int
	err = pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, 'admin', true)
		RETURNING id
	`, name, email, string(hash)).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to create admin: %v\n", err)
	}

	fmt.Println()
	fmt.Printf("Admin account created (id %d): %s\n", id, email)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
