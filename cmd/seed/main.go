package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/tanoush/storefront/internal/db"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
	"github.com/tanoush/storefront/internal/repository/postgres"
	"github.com/tanoush/storefront/internal/service/auth/password"
	"github.com/tanoush/storefront/internal/service/catalog"
	"github.com/tanoush/storefront/internal/service/user"
)

type account struct {
	email    string
	name     string
	password string
	role     string
}

var accounts = []account{
	{"admin@tanoush.com", "Admin User", "admin123", models.RoleAdmin},
	{"user@tanoush.com", "John Doe", "user123", models.RoleUser},
}

func product(name string, desc string, price string, category string, stock int, image string, colors []string, sizes []string) models.Product {
	return models.Product{
		Name:        name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Brand:       "TANOUSH",
		Stock:       stock,
		Images:      []string{"https://images.unsplash.com/" + image + "?w=500"},
		Colors:      colors,
		Sizes:       sizes,
	}
}

var products = []models.Product{
	product("Classic Black Hoodie", "Cotton blend hoodie with a relaxed fit for everyday wear.", "2499", "hoodies", 25,
		"photo-1556821840-3a63f95609a7", []string{"Black", "Gray"}, []string{"S", "M", "L", "XL", "XXL"}),
	product("Graphical Thunder Hoodie", "Hoodie with a bold printed artwork on the back.", "2699", "graphical-hoodies", 15,
		"photo-1578587018452-892bacefd3f2", []string{"Black", "White"}, []string{"M", "L", "XL"}),
	product("Essential Cotton Tee", "Soft cotton t-shirt for every day.", "899", "tees", 50,
		"photo-1521572163474-6864f9cf17ab", []string{"White", "Black", "Gray", "Navy"}, []string{"S", "M", "L", "XL"}),
	product("Slim Fit Trousers", "Slim trousers for casual and smart-casual looks.", "3299", "trousers", 20,
		"photo-1473966968600-fa801b869a1a", []string{"Black", "Navy", "Gray", "Khaki"}, []string{"28", "30", "32", "34", "36"}),
	product("Comfort Fit Shorts", "Light summer shorts.", "1499", "shorts", 30,
		"photo-1591195853828-11db59a44f6b", []string{"Black", "Navy", "Beige"}, []string{"S", "M", "L", "XL"}),
	product("Winter Puffer Jacket", "Warm water-resistant puffer jacket.", "4999", "jackets", 10,
		"photo-1551028719-00167b16eac5", []string{"Black", "Navy"}, []string{"M", "L", "XL", "XXL"}),
	product("Mockneck Long Sleeve", "Long sleeve top with a mock neck.", "1999", "mocknecks", 18,
		"photo-1618354691373-d851c5c3a990", []string{"Black", "White", "Gray"}, []string{"S", "M", "L", "XL"}),
	product("Wool Blend Coat", "Wool blend coat for formal occasions.", "6999", "coats", 8,
		"photo-1539533018447-63fcce2678e3", []string{"Black", "Charcoal", "Camel"}, []string{"M", "L", "XL"}),
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		slog.Error("seed failed", "error", err.Error())
		os.Exit(1)
	}
}

// Drop everything in the database and fill it with sample users and catalog
func run(ctx context.Context, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("can't read .env. Err: %w", err)
	}

	dsn := os.Getenv("DATABASE_URI")
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	fs.StringVarP(&dsn, "database", "d", dsn, "Database connection string")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if dsn == "" {
		return errors.New("DATABASE_URI must be set")
	}

	l, err := logger.NewTextLogger(logger.LevelInfo)
	if err != nil {
		return err
	}

	l.Info("resetting database")
	if err := db.Reset(dsn); err != nil {
		return err
	}

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	return seed(ctx, postgres.NewStorage(pool), l)
}

func seed(ctx context.Context, storage repository.Storage, l logger.Logger) error {
	return storage.InTx(ctx, func(tx repository.Storage) error {
		users := user.NewService(password.BcryptHasher{Cost: password.DefaultCost}, tx, nil)
		for _, a := range accounts {
			u, err := users.CreateUser(ctx, a.email, a.name, a.password, a.role)
			if err != nil {
				return err
			}
			l.Info("user created", "email", u.Email, "role", u.Role, "demo_password", a.password)
		}

		catalogService := catalog.NewService(tx.Product(), nil, 0, l)
		for _, p := range products {
			created, err := catalogService.Create(ctx, p)
			if err != nil {
				return fmt.Errorf("can't create %q. Err: %w", p.Name, err)
			}
			l.Info("product created", "name", created.Name, "price", created.Price.String())
		}
		return nil
	})
}
