package gateway

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rahul/rasoi/internal/governance"
	"github.com/rahul/rasoi/internal/pipeline"
	"github.com/rahul/rasoi/internal/store"
	"github.com/rahul/rasoi/internal/transcribe"
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head><title>Rasoi — Grocery Shopping Assistant</title></head>
<body>
  <h1>Grocery Shopping Assistant</h1>
  <p>Describe what you want to prepare and set your budget.</p>
  <form method="POST" action="/">
    <input type="text" name="user_input" placeholder="Dinner for 4 people" value="{{.UserInput}}" size="50" required>
    <input type="number" name="budget" min="1" step="1" value="{{.Budget}}" required>
    <button type="submit">Generate shopping list</button>
  </form>
  {{if .Error}}<p style="color:red">{{.Error}}</p>{{end}}
  {{if .Message}}<h2>Your shopping list</h2><div>{{.Message}}</div>{{end}}
</body>
</html>`

// HTTPGateway exposes the assistant over HTTP: the run endpoint, catalog
// CRUD, the voice upload endpoint and a minimal interactive page.
type HTTPGateway struct {
	server      *http.Server
	runner      Runner
	store       *store.Store
	transcriber transcribe.Transcriber
	policy      governance.PolicyEngine
	sanitizer   *bluemonday.Policy
}

type runRequest struct {
	UserInput string  `json:"user_input" binding:"required"`
	Budget    float64 `json:"budget" binding:"required"`
}

func NewHTTPGateway(addr string, runner Runner, st *store.Store, tr transcribe.Transcriber, policy governance.PolicyEngine) *HTTPGateway {
	gw := &HTTPGateway{
		runner:      runner,
		store:       st,
		transcriber: tr,
		policy:      policy,
		sanitizer:   bluemonday.UGCPolicy(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(template.Must(template.New("index").Parse(indexTemplate)))

	engine.GET("/", gw.indexPage)
	engine.POST("/", gw.indexRun)

	api := engine.Group("/api/v1")
	api.POST("/run", gw.run)
	api.POST("/audio/upload", gw.uploadAudio)

	recipes := api.Group("/recipes")
	recipes.GET("/:name", gw.getRecipe)
	recipes.GET("", gw.listRecipes)
	recipes.POST("", gw.createRecipe)
	recipes.PUT("/:name", gw.updateRecipe)
	recipes.DELETE("/:name", gw.deleteRecipe)

	products := api.Group("/products")
	products.GET("/:name", gw.getProduct)
	products.GET("", gw.listProducts)
	products.POST("", gw.createProduct)
	products.PUT("/:name", gw.updateProduct)
	products.DELETE("/:name", gw.deleteProduct)

	gw.server = &http.Server{Addr: addr, Handler: engine}
	return gw
}

func (gw *HTTPGateway) Start() error {
	log.Printf("HTTP gateway listening on %s", gw.server.Addr)
	err := gw.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (gw *HTTPGateway) Send(chatID string, text string) error {
	// HTTP is request/response; there is no push channel.
	return nil
}

func (gw *HTTPGateway) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return gw.server.Shutdown(ctx)
}

func (gw *HTTPGateway) execute(ctx context.Context, userInput string, budget float64, source string) (*pipeline.State, int, string) {
	verdict, err := gw.policy.Evaluate(ctx, governance.Request{UserInput: userInput, Budget: budget, Source: source})
	if err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	if verdict.Effect == governance.EffectDeny {
		return nil, http.StatusForbidden, verdict.Reason
	}

	state, err := gw.runner.Run(ctx, userInput, budget)
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		return nil, http.StatusInternalServerError, err.Error()
	}
	return state, http.StatusOK, ""
}

// --- run + UI ---

func (gw *HTTPGateway) run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, code, msg := gw.execute(c.Request.Context(), req.UserInput, req.Budget, "http")
	if state == nil {
		c.JSON(code, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (gw *HTTPGateway) indexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{"Budget": 25})
}

func (gw *HTTPGateway) indexRun(c *gin.Context) {
	userInput := c.PostForm("user_input")
	budget, err := strconv.ParseFloat(c.PostForm("budget"), 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, "index", gin.H{"UserInput": userInput, "Budget": 25, "Error": "invalid budget"})
		return
	}

	state, _, msg := gw.execute(c.Request.Context(), userInput, budget, "ui")
	if state == nil {
		c.HTML(http.StatusOK, "index", gin.H{"UserInput": userInput, "Budget": budget, "Error": msg})
		return
	}

	// The message is model-generated text; sanitize before rendering it
	// into the page.
	safe := template.HTML(gw.sanitizer.Sanitize(state.FinalMessage))
	c.HTML(http.StatusOK, "index", gin.H{"UserInput": userInput, "Budget": budget, "Message": safe})
}

func (gw *HTTPGateway) uploadAudio(c *gin.Context) {
	header, err := c.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing audio_file"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	transcription, err := gw.transcriber.Transcribe(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "File received, but transcription failed",
			"error":   err.Error(),
		})
		return
	}

	state, code, msg := gw.execute(c.Request.Context(), transcription, DefaultBudget, "audio")
	if state == nil {
		c.JSON(code, gin.H{
			"message":       "Transcription succeeded, but processing failed",
			"transcription": transcription,
			"error":         msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "File transcribed and processed successfully",
		"filename":      header.Filename,
		"transcription": transcription,
		"final_message": state.FinalMessage,
	})
}

// --- recipe CRUD ---

func (gw *HTTPGateway) getRecipe(c *gin.Context) {
	recipe, err := gw.store.GetRecipe(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (gw *HTTPGateway) listRecipes(c *gin.Context) {
	recipes, err := gw.store.ListRecipes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (gw *HTTPGateway) createRecipe(c *gin.Context) {
	var recipe store.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := gw.store.CreateRecipe(recipe); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (gw *HTTPGateway) updateRecipe(c *gin.Context) {
	var recipe store.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := gw.store.UpdateRecipe(c.Param("name"), recipe); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (gw *HTTPGateway) deleteRecipe(c *gin.Context) {
	deleted, err := gw.store.DeleteRecipe(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to delete recipe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- product CRUD ---

func (gw *HTTPGateway) getProduct(c *gin.Context) {
	product, err := gw.store.GetProduct(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (gw *HTTPGateway) listProducts(c *gin.Context) {
	products, err := gw.store.ListProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (gw *HTTPGateway) createProduct(c *gin.Context) {
	var product store.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := gw.store.CreateProduct(product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (gw *HTTPGateway) updateProduct(c *gin.Context) {
	var product store.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := gw.store.UpdateProduct(c.Param("name"), product); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (gw *HTTPGateway) deleteProduct(c *gin.Context) {
	deleted, err := gw.store.DeleteProduct(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
