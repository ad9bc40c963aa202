package config

import (
	"os"
	"strconv"
)

// Config holds server configuration.
type Config struct {
	Port       string
	LogLevel   string
	CorpusFile string
	// SigningKeyFile names one seed file, or a comma-separated list to
	// sign with a key ring (rotation).
	SigningKeyFile string
	KeyID          string
	// ProfileFile names an optional YAML profile applied over the env
	// values by LoadWithProfile.
	ProfileFile string
	// AllowUnsigned controls the missing-key policy: false fails tool
	// calls with a signing-unavailable error, true serves payloads
	// flagged unsigned.
	AllowUnsigned    bool
	ReceiptDB        string
	RateLimit        float64
	TelemetryEnabled bool
	OTLPEndpoint     string
}

// Load loads configuration from environment variables.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	corpusFile := os.Getenv("TAT_CORPUS_FILE")
	if corpusFile == "" {
		corpusFile = "corpus.yaml"
	}

	keyID := os.Getenv("TAT_KEY_ID")
	if keyID == "" {
		keyID = "tat-2026"
	}

	receiptDB := os.Getenv("TAT_RECEIPT_DB")
	if receiptDB == "" {
		receiptDB = "receipts.db"
	}

	rateLimit := 0.0
	if v := os.Getenv("TAT_RATE_LIMIT"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			rateLimit = parsed
		}
	}

	return &Config{
		Port:             port,
		LogLevel:         logLevel,
		CorpusFile:       corpusFile,
		SigningKeyFile:   os.Getenv("TAT_SIGNING_KEY_FILE"),
		KeyID:            keyID,
		ProfileFile:      os.Getenv("TAT_PROFILE"),
		AllowUnsigned:    os.Getenv("TAT_ALLOW_UNSIGNED") == "true",
		ReceiptDB:        receiptDB,
		RateLimit:        rateLimit,
		TelemetryEnabled: os.Getenv("TAT_TELEMETRY") == "true",
		OTLPEndpoint:     os.Getenv("OTLP_ENDPOINT"),
	}
}
