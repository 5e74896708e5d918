package config

import (
	"os"
	"strconv"

	"fleetinvoice/internal/logger"
)

// Extractor / OCR engine selectors.
const (
	ExtractorOpenAI     = "openai"
	ExtractorDocumentAI = "documentai"

	OCREngineTesseract = "tesseract"
	OCREngineVision    = "vision"
)

// Defaults for the tunable pipeline constants. They are held here as named
// configuration values rather than scattered literals so tests can override
// them through the component configs they feed.
const (
	DefaultVATPercent    = 20.0
	DefaultMinTextLength = 100
	DefaultOCRDPI        = 300
	DefaultPromptMaxLen  = 4000
)

type Config struct {
	// OpenAI Configuration
	OpenAIAPIKey string
	OpenAIModel  string

	// Pipeline selection
	Extractor string // "openai" or "documentai"
	OCREngine string // "tesseract" or "vision"

	// Local OCR toolchain
	PdftoppmBin   string
	TesseractBin  string
	TesseractLang string
	OCRDPI        int

	// Extraction tunables
	MinTextLength int
	PromptMaxLen  int

	// Default VAT percentage applied when the oracle returns none
	VATPercent float64

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment. Google Cloud credentials for
// the optional Vision/Document AI backends are read by those adapters
// directly, matching how they resolve GOOGLE_* variables.
func Load() *Config {
	return &Config{
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		Extractor:     getEnv("EXTRACTOR", ExtractorOpenAI),
		OCREngine:     getEnv("OCR_ENGINE", OCREngineTesseract),
		PdftoppmBin:   getEnv("PDFTOPPM_BIN", "pdftoppm"),
		TesseractBin:  getEnv("TESSERACT_BIN", "tesseract"),
		TesseractLang: getEnv("TESSERACT_LANG", "eng"),
		OCRDPI:        getEnvInt("OCR_DPI", DefaultOCRDPI),
		MinTextLength: getEnvInt("MIN_TEXT_LENGTH", DefaultMinTextLength),
		PromptMaxLen:  getEnvInt("PROMPT_MAX_CHARS", DefaultPromptMaxLen),
		VATPercent:    getEnvFloat("DEFAULT_VAT_PERCENT", DefaultVATPercent),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
