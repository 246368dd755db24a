package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete greenlens configuration
type Config struct {
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	Knowledge    KnowledgeConfig    `yaml:"knowledge" mapstructure:"knowledge"`
	Vision       VisionConfig       `yaml:"vision" mapstructure:"vision"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Storage      StorageConfig      `yaml:"storage" mapstructure:"storage"`
}

// ScoringConfig holds every weight, delta and threshold used by the scoring engine
type ScoringConfig struct {
	Weights            WeightsConfig               `yaml:"weights" mapstructure:"weights"`
	Text               TextScoringConfig           `yaml:"text" mapstructure:"text"`
	Certification      CertificationScoringConfig  `yaml:"certification" mapstructure:"certification"`
	Knowledge          KnowledgeScoringConfig      `yaml:"knowledge" mapstructure:"knowledge"`
	VaguenessThreshold float64                     `yaml:"vagueness_threshold" mapstructure:"vagueness_threshold"` // Claims above this are "vague"
	Bands              []SeverityBand              `yaml:"bands" mapstructure:"bands"`                             // Ascending by Min
	TypeMap            map[ClaimType]DeceptionType `yaml:"type_map" mapstructure:"type_map"`                       // Majority claim type -> deception type
	TypeAdvice         map[DeceptionType]string    `yaml:"type_advice" mapstructure:"type_advice"`                 // Extra recommendation per detected type
}

// WeightsConfig sets each component's share of the final score
type WeightsConfig struct {
	NLP            float64 `yaml:"nlp" mapstructure:"nlp"`
	Certification  float64 `yaml:"certification" mapstructure:"certification"`
	Visual         float64 `yaml:"visual" mapstructure:"visual"`
	KnowledgeGraph float64 `yaml:"knowledge_graph" mapstructure:"knowledge_graph"`
}

// TextScoringConfig tunes the text-only overall score
type TextScoringConfig struct {
	CredibilityRange float64 `yaml:"credibility_range" mapstructure:"credibility_range"`
	VaguenessWeight  float64 `yaml:"vagueness_weight" mapstructure:"vagueness_weight"`
	RedFlagPenalty   float64 `yaml:"red_flag_penalty" mapstructure:"red_flag_penalty"`
	UnverifiedWeight float64 `yaml:"unverified_weight" mapstructure:"unverified_weight"`
}

// CertificationScoringConfig tunes the certification component
type CertificationScoringConfig struct {
	Neutral            float64 `yaml:"neutral" mapstructure:"neutral"`
	VerifiedDelta      float64 `yaml:"verified_delta" mapstructure:"verified_delta"`
	PartialDelta       float64 `yaml:"partial_delta" mapstructure:"partial_delta"`
	UntrustworthyDelta float64 `yaml:"untrustworthy_delta" mapstructure:"untrustworthy_delta"`
	UnverifiedDelta    float64 `yaml:"unverified_delta" mapstructure:"unverified_delta"`
}

// KnowledgeScoringConfig tunes the knowledge graph component
type KnowledgeScoringConfig struct {
	Neutral              float64 `yaml:"neutral" mapstructure:"neutral"`
	VerifiedWeight       float64 `yaml:"verified_weight" mapstructure:"verified_weight"`
	UnverifiedWeight     float64 `yaml:"unverified_weight" mapstructure:"unverified_weight"`
	ContradictionPenalty float64 `yaml:"contradiction_penalty" mapstructure:"contradiction_penalty"`
}

// SeverityBand maps scores at or above Min to a severity label
type SeverityBand struct {
	Min             float64  `yaml:"min" mapstructure:"min"`
	Label           Severity `yaml:"label" mapstructure:"label"`
	Color           string   `yaml:"color" mapstructure:"color"` // Hex colour used by renderers
	Recommendations []string `yaml:"recommendations" mapstructure:"recommendations"`
}

// ExtractionConfig tunes the rule-based claim extractor
type ExtractionConfig struct {
	MinSentenceLength int `yaml:"min_sentence_length" mapstructure:"min_sentence_length"`
	MaxSentenceLength int `yaml:"max_sentence_length" mapstructure:"max_sentence_length"`
}

// KnowledgeConfig configures the knowledge graph
type KnowledgeConfig struct {
	FactsFile string        `yaml:"facts_file,omitempty" mapstructure:"facts_file"` // Empty uses the built-in fact base
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// VisionConfig configures the reference vision analyzer
type VisionConfig struct {
	RegistryFile            string        `yaml:"registry_file,omitempty" mapstructure:"registry_file"` // Empty uses the built-in registry
	OCREndpoint             string        `yaml:"ocr_endpoint,omitempty" mapstructure:"ocr_endpoint"`   // Remote OCR service; empty uses sidecar files
	OCRTimeout              time.Duration `yaml:"ocr_timeout" mapstructure:"ocr_timeout"`
	MaxImageBytes           int64         `yaml:"max_image_bytes" mapstructure:"max_image_bytes"`
	MaxPixels               int64         `yaml:"max_pixels" mapstructure:"max_pixels"`   // Width*height limit checked before decoding
	MaxSamples              int           `yaml:"max_samples" mapstructure:"max_samples"` // Pixel samples per image
	ExcessiveGreenThreshold float64       `yaml:"excessive_green_threshold" mapstructure:"excessive_green_threshold"`
	NaturePaletteThreshold  float64       `yaml:"nature_palette_threshold" mapstructure:"nature_palette_threshold"`
}

// HTTPConfig configures product page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures verdict caching
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend       string        `yaml:"backend" mapstructure:"backend"` // memory, layered, redis
	MemoryTTL     time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir       string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL       time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisAddr     string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig configures per-host request pacing for remote collaborators
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider  string `yaml:"provider,omitempty" mapstructure:"provider"` // openai or empty
	Model     string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"` // OpenAI-compatible endpoint (e.g., Ollama)
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"`             // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	Color         bool `yaml:"color" mapstructure:"color"` // Colour the terminal summary when stdout is a TTY
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// StorageConfig configures where reports are kept
type StorageConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // file, mongo, or empty to disable
	Dir           string `yaml:"dir" mapstructure:"dir"`
	MongoURI      string `yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database" mapstructure:"mongo_database"`
}

// DefaultScoringConfig returns the standard scoring tables
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: WeightsConfig{
			NLP:            0.40,
			Certification:  0.30,
			Visual:         0.20,
			KnowledgeGraph: 0.10,
		},
		Text: TextScoringConfig{
			CredibilityRange: 100,
			VaguenessWeight:  20,
			RedFlagPenalty:   5,
			UnverifiedWeight: 15,
		},
		Certification: CertificationScoringConfig{
			Neutral:            50,
			VerifiedDelta:      -15,
			PartialDelta:       -5,
			UntrustworthyDelta: 30,
			UnverifiedDelta:    10,
		},
		Knowledge: KnowledgeScoringConfig{
			Neutral:              50,
			VerifiedWeight:       30,
			UnverifiedWeight:     20,
			ContradictionPenalty: 15,
		},
		VaguenessThreshold: 0.7,
		Bands: []SeverityBand{
			{
				Min:   0,
				Label: SeverityTrustworthy,
				Color: "#4CAF50",
				Recommendations: []string{
					"✓ This product appears trustworthy with verified environmental claims",
					"✓ Certifications have been verified against legitimate databases",
				},
			},
			{
				Min:   20,
				Label: SeverityMinor,
				Color: "#FFC107",
				Recommendations: []string{
					"⚠ Minor concerns detected - some claims lack specific details",
					"→ Request additional information from the manufacturer",
				},
			},
			{
				Min:   40,
				Label: SeverityModerate,
				Color: "#FF9800",
				Recommendations: []string{
					"⚠⚠ Moderate deception indicators present",
					"→ Be skeptical of environmental claims",
					"→ Look for third-party certifications",
				},
			},
			{
				Min:   60,
				Label: SeverityHigh,
				Color: "#F44336",
				Recommendations: []string{
					"⛔ High deception risk - multiple red flags",
					"→ Avoid this product if sustainability is important to you",
					"→ Report misleading claims to consumer protection agencies",
				},
			},
			{
				Min:   80,
				Label: SeveritySevere,
				Color: "#B71C1C",
				Recommendations: []string{
					"⛔⛔ SEVERE DECEPTION DETECTED",
					"→ DO NOT trust environmental claims",
					"→ Report to FTC/consumer protection",
				},
			},
		},
		TypeMap: map[ClaimType]DeceptionType{
			ClaimTypeEnvironmental: DeceptionGreenwashing,
			ClaimTypeCarbon:        DeceptionGreenwashing,
			ClaimTypeMaterial:      DeceptionBrownwashing,
			ClaimTypeReduction:     DeceptionBrownwashing,
			ClaimTypeSocial:        DeceptionBluewashing,
			ClaimTypeLabor:         DeceptionBluewashing,
			ClaimTypeCommunity:     DeceptionBluewashing,
			ClaimTypeCertification: DeceptionCertificationFraud,
			ClaimTypeTemporal:      DeceptionTemporalEvasion,
			ClaimTypeCommitment:    DeceptionVagueCommitment,
		},
		TypeAdvice: map[DeceptionType]string{
			DeceptionFakeCertifications: "⚠ Fake or unverifiable certifications detected",
			DeceptionVisual:             "⚠ Visual greenwashing through color/imagery manipulation",
		},
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scoring: DefaultScoringConfig(),
		Extraction: ExtractionConfig{
			MinSentenceLength: 8,
			MaxSentenceLength: 500,
		},
		Knowledge: KnowledgeConfig{
			CacheTTL: 24 * time.Hour,
		},
		Vision: VisionConfig{
			OCRTimeout:              30 * time.Second,
			MaxImageBytes:           20 << 20,
			MaxPixels:               40_000_000,
			MaxSamples:              250_000,
			ExcessiveGreenThreshold: 30,
			NaturePaletteThreshold:  55,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Greenlens/0.1 (+https://github.com/ppiankov/greenlens)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "memory",
			MemoryTTL: 1 * time.Hour,
			DiskDir:   defaultCacheDir(),
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			Color:         true,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 20 << 20,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Storage: StorageConfig{
			Dir:           "./greenlens-reports",
			MongoDatabase: "greenlens",
		},
	}
}

// defaultCacheDir returns the per-user cache directory for greenlens
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "greenlens")
	}
	return filepath.Join(os.TempDir(), "greenlens-cache")
}
