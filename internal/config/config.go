package config

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	BaseURL    string         `yaml:"base_url" mapstructure:"base_url"`
	StartURL   string         `yaml:"start_url" mapstructure:"start_url"`
	OutputRoot string         `yaml:"output_root" mapstructure:"output_root"`
	StateFile  string         `yaml:"state_file" mapstructure:"state_file"`
	LedgerPath string         `yaml:"ledger_path" mapstructure:"ledger_path"`
	Categories []string       `yaml:"categories" mapstructure:"categories"`
	Languages  []string       `yaml:"languages" mapstructure:"languages"`
	Selectors  SelectorConfig `yaml:"selectors" mapstructure:"selectors"`
	Browser    BrowserConfig  `yaml:"browser" mapstructure:"browser"`
	Pacing     PacingConfig   `yaml:"pacing" mapstructure:"pacing"`
	Log        LogConfig      `yaml:"log" mapstructure:"log"`
}

// SelectorConfig holds every CSS selector the pipeline consumes. Selectors
// are configuration, never hard-coded in the crawl code.
type SelectorConfig struct {
	// CategoryLinks is a fmt pattern; the category name is substituted in.
	CategoryLinks     string `yaml:"category_links" mapstructure:"category_links"`
	LinkAttribute     string `yaml:"link_attribute" mapstructure:"link_attribute"`
	Title             string `yaml:"title" mapstructure:"title"`
	Description       string `yaml:"description" mapstructure:"description"`
	SampleInput       string `yaml:"sample_input" mapstructure:"sample_input"`
	SampleOutput      string `yaml:"sample_output" mapstructure:"sample_output"`
	RunCodeSelector   string `yaml:"run_code_selector" mapstructure:"run_code_selector"`
	RunCodeText       string `yaml:"run_code_text" mapstructure:"run_code_text"`
	TestcaseToggles   string `yaml:"testcase_toggles" mapstructure:"testcase_toggles"`
	TestcaseFragments string `yaml:"testcase_fragments" mapstructure:"testcase_fragments"`
}

// BrowserConfig configures the chromedp backend. RemoteURL attaches to an
// already-authenticated browser over the DevTools protocol; UserDataDir
// reuses a logged-in profile. The scraper never performs a login itself.
type BrowserConfig struct {
	Headless    bool   `yaml:"headless" mapstructure:"headless"`
	RemoteURL   string `yaml:"remote_url" mapstructure:"remote_url"`
	UserDataDir string `yaml:"user_data_dir" mapstructure:"user_data_dir"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PacingConfig bounds the human-pacing delays inserted after navigations
// and clicks. Zero values disable the corresponding mechanism.
type PacingConfig struct {
	NavPerMinute int `yaml:"nav_per_minute" mapstructure:"nav_per_minute"`
	MinDelayMs   int `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
	MaxDelayMs   int `yaml:"max_delay_ms" mapstructure:"max_delay_ms"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("base_url", "https://www.algoexpert.io")
	v.SetDefault("start_url", "https://www.algoexpert.io/questions")
	v.SetDefault("output_root", "./problems")
	v.SetDefault("state_file", "./scraped.txt")
	v.SetDefault("ledger_path", "./scraper.db")
	v.SetDefault("categories", []string{
		"arrays", "strings", "linked-lists", "stacks", "binary-search-trees",
		"binary-trees", "dynamic-programming", "famous-algorithms", "graphs",
		"greedy-algorithms", "heaps", "recursion", "searching", "sorting", "tries",
	})
	v.SetDefault("languages", []string{"python", "javascript", "typescript", "java", "cpp", "go"})
	v.SetDefault("selectors.category_links", `[data-category="%s"] a`)
	v.SetDefault("selectors.link_attribute", "href")
	v.SetDefault("selectors.title", "h2")
	v.SetDefault("selectors.description", ".html-content")
	v.SetDefault("selectors.sample_input", "pre.sample-input")
	v.SetDefault("selectors.sample_output", "pre.sample-output")
	v.SetDefault("selectors.run_code_selector", "button")
	v.SetDefault("selectors.run_code_text", "Run Code")
	v.SetDefault("selectors.testcase_toggles", `[data-testid="testcase-collapsed"]`)
	v.SetDefault("selectors.testcase_fragments", ".testcase-panel span")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout_secs", 45)
	v.SetDefault("pacing.nav_per_minute", 12)
	v.SetDefault("pacing.min_delay_ms", 800)
	v.SetDefault("pacing.max_delay_ms", 2600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := url.Parse(c.BaseURL); err != nil {
		return eris.Wrapf(err, "config: invalid base_url %q", c.BaseURL)
	}
	if len(c.Categories) == 0 {
		return eris.New("config: no categories configured")
	}
	if c.Selectors.CategoryLinks == "" || !strings.Contains(c.Selectors.CategoryLinks, "%s") {
		return eris.Errorf("config: selectors.category_links must contain a %%s placeholder, got %q", c.Selectors.CategoryLinks)
	}
	if c.Pacing.MaxDelayMs < c.Pacing.MinDelayMs {
		return eris.New("config: pacing.max_delay_ms below pacing.min_delay_ms")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
