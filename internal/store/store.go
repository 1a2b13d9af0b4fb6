package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// Store is the recipe/product catalog backed by sqlite. Names are unique in
// both tables; lookups that find nothing return (nil, nil).
type Store struct {
	DB *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			price REAL NOT NULL,
			category TEXT NOT NULL,
			manufacturer TEXT,
			composition TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS recipes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			category TEXT NOT NULL,
			ingredients TEXT NOT NULL
		);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) GetProduct(name string) (*Product, error) {
	row := s.DB.QueryRow(
		`SELECT name, price, category, manufacturer, composition FROM products WHERE name = ?`, name)
	var p Product
	err := row.Scan(&p.Name, &p.Price, &p.Category, &p.Manufacturer, &p.Composition)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ProductsByCategory(category ProductCategory) ([]Product, error) {
	rows, err := s.DB.Query(
		`SELECT name, price, category, manufacturer, composition FROM products WHERE category = ?`, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Name, &p.Price, &p.Category, &p.Manufacturer, &p.Composition); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) ListProducts() ([]Product, error) {
	rows, err := s.DB.Query(
		`SELECT name, price, category, manufacturer, composition FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Name, &p.Price, &p.Category, &p.Manufacturer, &p.Composition); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateProduct inserts the product unless one with the same name exists.
func (s *Store) CreateProduct(p Product) error {
	_, err := s.DB.Exec(
		`INSERT OR IGNORE INTO products (name, price, category, manufacturer, composition) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Price, string(p.Category), p.Manufacturer, p.Composition)
	return err
}

func (s *Store) UpdateProduct(name string, p Product) error {
	res, err := s.DB.Exec(
		`UPDATE products SET price = ?, category = ?, manufacturer = ?, composition = ? WHERE name = ?`,
		p.Price, string(p.Category), p.Manufacturer, p.Composition, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %q not found", name)
	}
	return nil
}

func (s *Store) DeleteProduct(name string) (bool, error) {
	res, err := s.DB.Exec(`DELETE FROM products WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) GetRecipe(name string) (*Recipe, error) {
	row := s.DB.QueryRow(`SELECT name, category, ingredients FROM recipes WHERE name = ?`, name)
	var r Recipe
	var ingredients string
	err := row.Scan(&r.Name, &r.Category, &ingredients)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients for %q: %w", name, err)
	}
	return &r, nil
}

// ListRecipes returns the name/category projection of every recipe.
func (s *Store) ListRecipes() ([]RecipeSummary, error) {
	rows, err := s.DB.Query(`SELECT name, category FROM recipes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []RecipeSummary
	for rows.Next() {
		var r RecipeSummary
		if err := rows.Scan(&r.Name, &r.Category); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// CreateRecipe inserts the recipe unless one with the same name exists.
func (s *Store) CreateRecipe(r Recipe) error {
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(
		`INSERT OR IGNORE INTO recipes (name, category, ingredients) VALUES (?, ?, ?)`,
		r.Name, string(r.Category), string(ingredients))
	return err
}

func (s *Store) UpdateRecipe(name string, r Recipe) error {
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return err
	}
	res, err := s.DB.Exec(
		`UPDATE recipes SET category = ?, ingredients = ? WHERE name = ?`,
		string(r.Category), string(ingredients), name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recipe %q not found", name)
	}
	return nil
}

func (s *Store) DeleteRecipe(name string) (bool, error) {
	res, err := s.DB.Exec(`DELETE FROM recipes WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
