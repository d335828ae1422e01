package main

import (
	"database/sql"
	"log"
	"log/slog"
	"os"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/db"
	"github.com/saxenaraghav20/nutritionist-ai/internal/logging"
	"github.com/saxenaraghav20/nutritionist-ai/internal/nutrition"
	nutritionedamam "github.com/saxenaraghav20/nutritionist-ai/internal/nutrition/edamam"
	"github.com/saxenaraghav20/nutritionist-ai/internal/nutrition/apininjas"
	"github.com/saxenaraghav20/nutritionist-ai/internal/nutrition/local"
	"github.com/saxenaraghav20/nutritionist-ai/internal/recipe"
	recipeedamam "github.com/saxenaraghav20/nutritionist-ai/internal/recipe/edamam"
	"github.com/saxenaraghav20/nutritionist-ai/internal/recipe/mealdb"
	"github.com/saxenaraghav20/nutritionist-ai/internal/recipe/spoonacular"
	"github.com/saxenaraghav20/nutritionist-ai/internal/service"
	"github.com/saxenaraghav20/nutritionist-ai/internal/store"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
	claudevision "github.com/saxenaraghav20/nutritionist-ai/internal/vision/claude"
	geminivision "github.com/saxenaraghav20/nutritionist-ai/internal/vision/gemini"
	hfvision "github.com/saxenaraghav20/nutritionist-ai/internal/vision/huggingface"
	ollamavision "github.com/saxenaraghav20/nutritionist-ai/internal/vision/ollama"
	rekognitionvision "github.com/saxenaraghav20/nutritionist-ai/internal/vision/rekognition"
	"github.com/saxenaraghav20/nutritionist-ai/internal/web"
	"github.com/saxenaraghav20/nutritionist-ai/internal/web/templates"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		cleanup()
		os.Exit(1)
	}

	var database *sql.DB
	if cfg.NutritionBackend == "local" {
		database, err = db.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return
		}
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()
	}

	classifier := newClassifier(cfg, logger)
	nutritionSrc := newNutritionSource(cfg, database, logger)
	recipeSrc := newRecipeSource(cfg, logger)

	analysisService := service.NewAnalysisService(classifier, nutritionSrc, recipeSrc, cfg.RecipeLimit, logger)
	server := web.NewServer(analysisService, templates.FS, cfg.MaxUploadBytes, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load(), nil
}

func newClassifier(cfg *config.Config, logger *slog.Logger) vision.Classifier {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeClassifier(cfg.ClaudeAPIKey, cfg.ClaudeModel, "")
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaClassifier(cfg.OllamaHost, cfg.OllamaModel)
	case "huggingface":
		logger.Info("using Hugging Face vision backend", "model", cfg.HuggingFaceModel)
		return hfvision.NewHuggingFaceClassifier(cfg.HuggingFaceToken, cfg.HuggingFaceModel)
	case "rekognition":
		logger.Info("using Rekognition vision backend", "region", cfg.AWSRegion)
		return rekognitionvision.NewRekognitionClassifier(cfg.AWSRegion, rekognitionvision.NewClientHandle(cfg.AWSRegion))
	default:
		logger.Info("using Gemini vision backend", "model", cfg.GeminiModel)
		return geminivision.NewGeminiClassifier(cfg.GoogleAPIKey, cfg.GeminiModel)
	}
}

func newNutritionSource(cfg *config.Config, database *sql.DB, logger *slog.Logger) nutrition.Source {
	switch cfg.NutritionBackend {
	case "none":
		logger.Info("nutrition lookups disabled")
		return nil
	case "local":
		logger.Info("using local nutrition database", "path", cfg.DBPath)
		return local.NewLocalSource(store.NewFoodStore(database))
	case "apininjas":
		logger.Info("using API Ninjas nutrition backend")
		return apininjas.NewAPINinjasSource(cfg.APINinjasKey, cfg.ServingQualifier).WithLogger(logger)
	default:
		logger.Info("using Edamam nutrition backend")
		return nutritionedamam.NewEdamamSource(cfg.EdamamNutritionAppID, cfg.EdamamNutritionAppKey, cfg.ServingQualifier)
	}
}

func newRecipeSource(cfg *config.Config, logger *slog.Logger) recipe.Source {
	switch cfg.RecipeBackend {
	case "none":
		logger.Info("recipe lookups disabled")
		return nil
	case "edamam":
		logger.Info("using Edamam recipe backend", "limit", cfg.RecipeLimit)
		return recipeedamam.NewEdamamSource(cfg.EdamamRecipeAppID, cfg.EdamamRecipeAppKey)
	case "spoonacular":
		logger.Info("using Spoonacular recipe backend", "limit", cfg.RecipeLimit)
		return spoonacular.NewSpoonacularSource(cfg.SpoonacularAPIKey)
	default:
		logger.Info("using TheMealDB recipe backend", "limit", cfg.RecipeLimit)
		return mealdb.NewMealDBSource()
	}
}
