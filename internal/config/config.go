package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr       string `yaml:"listen_addr"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	LogFile          string `yaml:"log_file"`
	MaxUploadBytes   int64  `yaml:"max_upload_bytes"`
	VisionBackend    string `yaml:"vision_backend"`
	// NutritionBackend is edamam, apininjas or local. apininjas needs a
	// premium API Ninjas plan; free plans omit calories and protein.
	NutritionBackend string `yaml:"nutrition_backend"`
	RecipeBackend    string `yaml:"recipe_backend"`
	RecipeLimit      int    `yaml:"recipe_limit"`
	ServingQualifier string `yaml:"serving_qualifier"`
	DBPath           string `yaml:"db_path"`

	GoogleAPIKey     string `yaml:"google_api_key"`
	GeminiModel      string `yaml:"gemini_model"`
	ClaudeAPIKey     string `yaml:"claude_api_key"`
	ClaudeModel      string `yaml:"claude_model"`
	OllamaHost       string `yaml:"ollama_host"`
	OllamaModel      string `yaml:"ollama_model"`
	HuggingFaceToken string `yaml:"hf_api_token"`
	HuggingFaceModel string `yaml:"hf_model"`
	AWSRegion        string `yaml:"aws_region"`

	EdamamNutritionAppID  string `yaml:"edamam_nutrition_app_id"`
	EdamamNutritionAppKey string `yaml:"edamam_nutrition_app_key"`
	EdamamRecipeAppID     string `yaml:"edamam_recipe_app_id"`
	EdamamRecipeAppKey    string `yaml:"edamam_recipe_app_key"`
	APINinjasKey          string `yaml:"api_ninjas_key"`
	SpoonacularAPIKey     string `yaml:"spoonacular_api_key"`
}

// Load reads configuration from the environment. A .env file (DOTENV_PATH,
// default ".env") is loaded first when present; variables already set in the
// environment win over the file.
func Load() *Config {
	loadDotEnv(getEnv("DOTENV_PATH", ".env"))

	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		LogFile:          getEnv("LOG_FILE", ""),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 20*1024*1024)),
		VisionBackend:    getEnv("VISION_BACKEND", "gemini"),
		NutritionBackend: getEnv("NUTRITION_BACKEND", "edamam"),
		RecipeBackend:    getEnv("RECIPE_BACKEND", "mealdb"),
		RecipeLimit:      getEnvInt("RECIPE_LIMIT", 3),
		ServingQualifier: getEnv("SERVING_QUALIFIER", "1 serving of"),
		DBPath:           getEnv("DB_PATH", "nutrition.db"),

		GoogleAPIKey:     getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		ClaudeAPIKey:     getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:      getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llava"),
		HuggingFaceToken: getEnv("HF_API_TOKEN", ""),
		HuggingFaceModel: getEnv("HF_MODEL", "nateraw/food"),
		AWSRegion:        getEnv("AWS_REGION", ""),

		EdamamNutritionAppID:  getEnv("EDAMAM_NUTRITION_APP_ID", ""),
		EdamamNutritionAppKey: getEnv("EDAMAM_NUTRITION_APP_KEY", ""),
		EdamamRecipeAppID:     getEnv("EDAMAM_RECIPE_APP_ID", ""),
		EdamamRecipeAppKey:    getEnv("EDAMAM_RECIPE_APP_KEY", ""),
		APINinjasKey:          getEnv("API_NINJAS_KEY", ""),
		SpoonacularAPIKey:     getEnv("SPOONACULAR_API_KEY", ""),
	}
}

// LoadFile loads the environment configuration and then overlays the keys
// present in the YAML file at path.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Credentials returns the named secrets the selected backends depend on.
// Unused secrets are left out so Validate only complains about what will
// actually be called.
func (c *Config) Credentials() Credentials {
	creds := Credentials{}
	switch c.VisionBackend {
	case "gemini":
		creds["GOOGLE_API_KEY"] = c.GoogleAPIKey
	case "claude":
		creds["CLAUDE_API_KEY"] = c.ClaudeAPIKey
	case "huggingface":
		creds["HF_API_TOKEN"] = c.HuggingFaceToken
	case "rekognition":
		creds["AWS_REGION"] = c.AWSRegion
	}
	switch c.NutritionBackend {
	case "edamam":
		creds["EDAMAM_NUTRITION_APP_ID"] = c.EdamamNutritionAppID
		creds["EDAMAM_NUTRITION_APP_KEY"] = c.EdamamNutritionAppKey
	case "apininjas":
		creds["API_NINJAS_KEY"] = c.APINinjasKey
	}
	switch c.RecipeBackend {
	case "edamam":
		creds["EDAMAM_RECIPE_APP_ID"] = c.EdamamRecipeAppID
		creds["EDAMAM_RECIPE_APP_KEY"] = c.EdamamRecipeAppKey
	case "spoonacular":
		creds["SPOONACULAR_API_KEY"] = c.SpoonacularAPIKey
	}
	return creds
}

// Validate reports unknown backend names and, as a *MissingCredentialError,
// any credential the selected backends need but do not have.
func (c *Config) Validate() error {
	if !oneOf(c.VisionBackend, "gemini", "claude", "ollama", "huggingface", "rekognition") {
		return fmt.Errorf("unknown VISION_BACKEND %q", c.VisionBackend)
	}
	if !oneOf(c.NutritionBackend, "edamam", "apininjas", "local", "none") {
		return fmt.Errorf("unknown NUTRITION_BACKEND %q", c.NutritionBackend)
	}
	if !oneOf(c.RecipeBackend, "edamam", "mealdb", "spoonacular", "none") {
		return fmt.Errorf("unknown RECIPE_BACKEND %q", c.RecipeBackend)
	}
	if c.RecipeLimit < 1 {
		return fmt.Errorf("RECIPE_LIMIT must be positive, got %d", c.RecipeLimit)
	}
	creds := c.Credentials()
	names := make([]string, 0, len(creds))
	for name := range creds {
		names = append(names, name)
	}
	return creds.Require(names...)
}

func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load env file", "path", path, "error", err)
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("ignoring non-integer config value", "key", key, "value", val)
		return defaultVal
	}
	return n
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
