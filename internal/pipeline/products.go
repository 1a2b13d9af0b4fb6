package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/rasoi/internal/cache"
	"github.com/rahul/rasoi/internal/llm"
	"github.com/rahul/rasoi/internal/observability"
	"github.com/rahul/rasoi/internal/store"
	"github.com/tmc/langchaingo/llms"
)

// ProductFinder maps the selected recipes to concrete store products. The
// result is memoized on the recipe list alone: a budget retry with the same
// recipes reuses the cached selection instead of re-invoking the model.
type ProductFinder struct {
	LLM     llm.Reasoner
	Store   *store.Store
	Cache   *cache.Cache
	Prompts *PromptManager
	Logger  *observability.Logger
}

type productResult struct {
	Products []ProductInfo `json:"products"`
}

var productSchema = llms.FunctionDefinition{
	Name:        "select_products",
	Description: "Submit the store products selected for the recipe ingredients.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"products": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":         map[string]any{"type": "string"},
						"price":        map[string]any{"type": "number"},
						"manufacturer": map[string]any{"type": "string"},
						"composition":  map[string]any{"type": "string"},
					},
					"required": []string{"name", "price", "manufacturer", "composition"},
				},
				"description": "One suitable product per recipe ingredient.",
			},
		},
		"required": []string{"products"},
	},
}

func (a *ProductFinder) Run(ctx context.Context, runID string, s *State) error {
	key := cache.Key("product_finder", s.Recipes)

	if data, ok := a.Cache.Get(key); ok {
		var cached []ProductInfo
		if err := json.Unmarshal(data, &cached); err == nil {
			a.Logger.LogCache(runID, string(StepProductFinder), key, true)
			s.Products = cached
			return nil
		}
	}
	a.Logger.LogCache(runID, string(StepProductFinder), key, false)

	evidence, err := a.collectEvidence(runID, s.Recipes)
	if err != nil {
		return fmt.Errorf("agent %s: %w", StepProductFinder, err)
	}

	prompt := strings.Join([]string{
		a.Prompts.Get(StepProductFinder),
		fmt.Sprintf("Recipes for user: %s", strings.Join(s.Recipes, ", ")),
		fmt.Sprintf("Products for recipes ingredients: %s", evidence),
	}, "\n")

	raw, err := a.LLM.GenerateStructured(ctx, prompt, productSchema)
	if err != nil {
		return externalErr(StepProductFinder, err)
	}
	a.Logger.LogLLM(runID, string(StepProductFinder), prompt, string(raw))

	var result productResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return externalErr(StepProductFinder, fmt.Errorf("malformed structured response: %w", err))
	}

	if data, err := json.Marshal(result.Products); err == nil {
		a.Cache.Set(key, data)
	}

	s.Products = result.Products
	return nil
}

// collectEvidence resolves each recipe's ingredients to candidate products
// per category. Missing recipes and empty categories are recorded as gaps
// and omitted; the model works with whatever evidence exists.
func (a *ProductFinder) collectEvidence(runID string, recipes []string) (string, error) {
	candidates := make(map[string][]store.Product)

	for _, name := range recipes {
		recipe, err := a.Store.GetRecipe(name)
		if err != nil {
			return "", err
		}
		if recipe == nil || len(recipe.Ingredients) == 0 {
			a.Logger.LogStoreGap(runID, string(StepProductFinder),
				fmt.Sprintf("recipe %q not found or has no ingredients", name))
			continue
		}

		for _, ingredient := range recipe.Ingredients {
			if ingredient.Category == "" {
				a.Logger.LogStoreGap(runID, string(StepProductFinder),
					fmt.Sprintf("ingredient %q in %q has no category", ingredient.Name, name))
				continue
			}
			products, err := a.Store.ProductsByCategory(ingredient.Category)
			if err != nil {
				return "", err
			}
			if len(products) == 0 {
				a.Logger.LogStoreGap(runID, string(StepProductFinder),
					fmt.Sprintf("no products for category %q in recipe %q", ingredient.Category, name))
				continue
			}
			candidates[name] = append(candidates[name], products...)
		}
	}

	data, err := json.Marshal(candidates)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
