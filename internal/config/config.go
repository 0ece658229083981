package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"codegraph/internal/scoring"
)

type Config struct {
	Project struct {
		Root   string   `yaml:"root"`
		Ignore []string `yaml:"ignore"`
	} `yaml:"project"`
	Paths struct {
		BaseURL string              `yaml:"base_url"` // tsconfig-style baseUrl
		Aliases map[string][]string `yaml:"aliases"`  // tsconfig-style paths remap
	} `yaml:"paths"`
	Engine struct {
		TypeCheckerBudget int                 `yaml:"type_checker_budget"`
		MinConfidence     float64             `yaml:"min_confidence"`
		MinNameLength     int                 `yaml:"min_name_length"`
		MaxFileSize       int                 `yaml:"max_file_size"`
		Calibration       scoring.Calibration `yaml:"calibration"`
	} `yaml:"engine"`
}

// Defaults returns the engine configuration used when no config file exists.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Engine.TypeCheckerBudget = 120
	cfg.Engine.MinConfidence = scoring.ExternalBase() + 0.05
	cfg.Engine.MinNameLength = 3
	cfg.Engine.MaxFileSize = 2 * 1024 * 1024
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Defaults()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	applyEnv(cfg)

	if cfg.Engine.TypeCheckerBudget <= 0 {
		cfg.Engine.TypeCheckerBudget = Defaults().Engine.TypeCheckerBudget
	}
	if cfg.Engine.MinNameLength <= 0 {
		cfg.Engine.MinNameLength = Defaults().Engine.MinNameLength
	}
	if cfg.Engine.MaxFileSize <= 0 {
		cfg.Engine.MaxFileSize = Defaults().Engine.MaxFileSize
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if root := os.Getenv("CODEGRAPH_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if budget := os.Getenv("CODEGRAPH_TC_BUDGET"); budget != "" {
		if n, err := strconv.Atoi(budget); err == nil && n > 0 {
			cfg.Engine.TypeCheckerBudget = n
		}
	}
	if min := os.Getenv("CODEGRAPH_MIN_CONFIDENCE"); min != "" {
		if f, err := strconv.ParseFloat(min, 64); err == nil {
			cfg.Engine.MinConfidence = f
		}
	}
}
