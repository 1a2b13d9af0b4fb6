package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProductCRUD(t *testing.T) {
	s := newTestStore(t)

	p := Product{Name: "Milk", Price: 40, Category: CategoryDairy, Manufacturer: "SimpleDairy", Composition: "Whole milk"}
	if err := s.CreateProduct(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetProduct("Milk")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Price != 40 || got.Category != CategoryDairy {
		t.Errorf("got %+v", got)
	}

	// Names are unique: a second create with the same name is a no-op.
	if err := s.CreateProduct(Product{Name: "Milk", Price: 999, Category: CategoryDairy}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProduct("Milk")
	if got.Price != 40 {
		t.Errorf("duplicate create overwrote the product: %+v", got)
	}

	p.Price = 45
	if err := s.UpdateProduct("Milk", p); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProduct("Milk")
	if got.Price != 45 {
		t.Errorf("update not applied: %+v", got)
	}

	if err := s.UpdateProduct("Ghost", p); err == nil {
		t.Error("updating a missing product must fail")
	}

	deleted, err := s.DeleteProduct("Milk")
	if err != nil || !deleted {
		t.Fatalf("delete failed: %v %v", deleted, err)
	}
	got, err = s.GetProduct("Milk")
	if err != nil || got != nil {
		t.Errorf("deleted product still present: %+v %v", got, err)
	}
}

func TestProductsByCategory(t *testing.T) {
	s := newTestStore(t)

	products := []Product{
		{Name: "Milk", Price: 40, Category: CategoryDairy},
		{Name: "Cheese", Price: 150, Category: CategoryDairy},
		{Name: "Bread", Price: 25, Category: CategoryBakery},
	}
	for _, p := range products {
		if err := s.CreateProduct(p); err != nil {
			t.Fatal(err)
		}
	}

	dairy, err := s.ProductsByCategory(CategoryDairy)
	if err != nil {
		t.Fatal(err)
	}
	if len(dairy) != 2 {
		t.Errorf("got %d dairy products, want 2", len(dairy))
	}

	none, err := s.ProductsByCategory(CategorySauces)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("got %d sauce products, want 0", len(none))
	}
}

func TestRecipeCRUD(t *testing.T) {
	s := newTestStore(t)

	r := Recipe{
		Name:     "Tomato Salad",
		Category: RecipeAppetizer,
		Ingredients: []Ingredient{
			{Name: "Tomato", Category: CategoryVegetables, WeightGrams: 120},
			{Name: "Olive Oil", Category: CategoryOilsFats, WeightGrams: 30},
		},
	}
	if err := s.CreateRecipe(r); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRecipe("Tomato Salad")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Ingredients) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Ingredients[0].Category != CategoryVegetables || got.Ingredients[0].WeightGrams != 120 {
		t.Errorf("ingredients did not roundtrip: %+v", got.Ingredients)
	}

	missing, err := s.GetRecipe("Ghost")
	if err != nil || missing != nil {
		t.Errorf("missing recipe lookup: %+v %v", missing, err)
	}

	r.Category = RecipeEntree
	if err := s.UpdateRecipe("Tomato Salad", r); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetRecipe("Tomato Salad")
	if got.Category != RecipeEntree {
		t.Errorf("update not applied: %+v", got)
	}

	summaries, err := s.ListRecipes()
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Name != "Tomato Salad" {
		t.Errorf("got summaries %+v", summaries)
	}

	deleted, err := s.DeleteRecipe("Tomato Salad")
	if err != nil || !deleted {
		t.Fatalf("delete failed: %v %v", deleted, err)
	}
}

func TestSeedFromCatalogFile(t *testing.T) {
	catalogYAML := `
products:
  - name: Milk
    price: 40
    category: dairy
    manufacturer: SimpleDairy
    composition: Whole milk
  - name: Bread
    price: 25
    category: bakery
    manufacturer: "Bakery #1"
    composition: Wheat flour
recipes:
  - name: Milkshake
    category: drinks
    ingredients:
      - { name: Milk, category: dairy, weight_grams: 300 }
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Products) != 2 || len(cat.Recipes) != 1 {
		t.Fatalf("catalog decode: %d products, %d recipes", len(cat.Products), len(cat.Recipes))
	}

	s := newTestStore(t)
	if err := s.Seed(cat); err != nil {
		t.Fatal(err)
	}
	// Seeding twice must not duplicate or overwrite.
	if err := s.Seed(cat); err != nil {
		t.Fatal(err)
	}

	products, err := s.ListProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Errorf("got %d products after double seed, want 2", len(products))
	}

	recipe, err := s.GetRecipe("Milkshake")
	if err != nil || recipe == nil {
		t.Fatalf("seeded recipe missing: %v", err)
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0].WeightGrams != 300 {
		t.Errorf("seeded ingredients wrong: %+v", recipe.Ingredients)
	}
}
