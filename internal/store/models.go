package store

// ProductCategory classifies store products and is the join key between a
// recipe ingredient and the candidate products for it.
type ProductCategory string

const (
	CategoryDairy            ProductCategory = "dairy"
	CategoryBakery           ProductCategory = "bakery"
	CategoryVegetables       ProductCategory = "vegetables"
	CategoryOilsFats         ProductCategory = "oils_fats"
	CategorySweetsDesserts   ProductCategory = "sweets_desserts"
	CategorySpicesCondiments ProductCategory = "spices_condiments"
	CategorySauces           ProductCategory = "sauces"
)

// RecipeCategory classifies recipes for catalog browsing.
type RecipeCategory string

const (
	RecipeAppetizer RecipeCategory = "appetizer"
	RecipeEntree    RecipeCategory = "entree"
	RecipeDessert   RecipeCategory = "dessert"
	RecipeDrinks    RecipeCategory = "drinks"
)

type Product struct {
	Name         string          `json:"name" yaml:"name"`
	Price        float64         `json:"price" yaml:"price"`
	Category     ProductCategory `json:"category" yaml:"category"`
	Manufacturer string          `json:"manufacturer" yaml:"manufacturer"`
	Composition  string          `json:"composition" yaml:"composition"`
}

type Ingredient struct {
	Name        string          `json:"name" yaml:"name"`
	Category    ProductCategory `json:"category" yaml:"category"`
	WeightGrams float64         `json:"weight_grams" yaml:"weight_grams"`
}

type Recipe struct {
	Name        string         `json:"name" yaml:"name"`
	Category    RecipeCategory `json:"category" yaml:"category"`
	Ingredients []Ingredient   `json:"ingredients" yaml:"ingredients"`
}

// RecipeSummary is the name/category projection handed to the recipe
// selection prompt as the available catalog.
type RecipeSummary struct {
	Name     string         `json:"name"`
	Category RecipeCategory `json:"category"`
}
