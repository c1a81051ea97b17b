package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"seo_article_generator/apperr"
)

// EnvPrefix marks process environment variables that override the config file.
const EnvPrefix = "ARTICLEGEN_"

// Config is built once at startup and passed to the components that need it.
type Config struct {
	APIKey       string        `koanf:"openai_api_key" validate:"required_unless=Provider mock"`
	Provider     string        `koanf:"llm_provider" validate:"oneof=openai deepseek mock"`
	Model        string        `koanf:"llm_model" validate:"required"`
	BaseURL      string        `koanf:"llm_base_url" validate:"required_if=Provider deepseek"`
	MaxTokens    int           `koanf:"llm_max_tokens" validate:"gt=0"`
	LLMTimeout   time.Duration `koanf:"llm_timeout" validate:"gte=0"`
	ChunkTokens  int           `koanf:"chunk_max_tokens" validate:"gt=1"`
	Attempts     int           `koanf:"retry_attempts" validate:"gt=0,lte=10"`
	RetryDelay   time.Duration `koanf:"retry_base_delay" validate:"gt=0"`
	CaptionLang  string        `koanf:"caption_language" validate:"required"`
	MDFallback   bool          `koanf:"markdown_fallback"`
	InputPath    string        `koanf:"input_path" validate:"required"`
	TemplatePath string        `koanf:"template_path" validate:"required"`
	ArticlePath  string        `koanf:"article_path" validate:"required"`
	PreviewPath  string        `koanf:"preview_path" validate:"required"`
	Placeholder  string        `koanf:"placeholder" validate:"required"`
	ServerAddr   string        `koanf:"server_addr"`
	LogMode      string        `koanf:"log_mode" validate:"oneof=dev prod"`
}

// Default returns the configuration used for keys absent from every source.
func Default() Config {
	return Config{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		MaxTokens:    4096,
		ChunkTokens:  4096,
		Attempts:     3,
		RetryDelay:   time.Second,
		CaptionLang:  "Polish",
		InputPath:    "input.txt",
		TemplatePath: "template.html",
		ArticlePath:  "article.html",
		PreviewPath:  "preview.html",
		Placeholder:  "<!-- Miejsce na wygenerowany artykuł -->",
		ServerAddr:   ":8000",
		LogMode:      "dev",
	}
}

// Load layers defaults, the key-value file at path and ARTICLEGEN_*
// environment variables, then validates the result. A missing file is an
// error: the credential has nowhere else to come from in normal deployments.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, apperr.Wrapf(apperr.KindConfiguration, "config.Load", err, "config file %s not found", path)
		}
		return Config{}, apperr.Wrapf(apperr.KindConfiguration, "config.Load", err, "failed to parse %s", path)
	}
	if err := k.Load(fileValues(values), nil); err != nil {
		return Config{}, fmt.Errorf("failed to apply %s: %w", path, err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, apperr.Wrap(apperr.KindConfiguration, "config.Load", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints; a missing API key for a real provider
// is reported here so the process refuses to start.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperr.New(apperr.KindConfiguration, "config.Validate",
				fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
		}
		return apperr.Wrap(apperr.KindConfiguration, "config.Validate", err)
	}
	return nil
}

// fileValues adapts a parsed key-value file to koanf.Provider. Keys are
// lower-cased so OPENAI_API_KEY and openai_api_key are the same setting.
type fileValues map[string]string

func (f fileValues) Read() (map[string]any, error) {
	out := make(map[string]any, len(f))
	for key, value := range f {
		out[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return out, nil
}

func (f fileValues) ReadBytes() ([]byte, error) {
	return nil, errors.New("ReadBytes not implemented")
}
