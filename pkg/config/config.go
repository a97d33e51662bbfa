package config

// Config is the top-level service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Rules    RulesConfig    `yaml:"rules" json:"rules"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Plugins  []PluginConfig `yaml:"plugins" json:"plugins"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// PipelineConfig consolidates every pipeline knob. It is built once at
// startup; all components read from it instead of the environment.
type PipelineConfig struct {
	ShortThreshold  int `yaml:"short_threshold" json:"short_threshold"`
	LongThreshold   int `yaml:"long_threshold" json:"long_threshold"`
	MaxContentForAI int `yaml:"max_content_for_ai" json:"max_content_for_ai"`
	MaxTextLength   int `yaml:"max_text_length" json:"max_text_length"`
	MaxMediaMB      int `yaml:"max_media_mb" json:"max_media_mb"`
	MinPDFChars     int `yaml:"min_pdf_chars" json:"min_pdf_chars"`
	MaxPDFPages     int `yaml:"max_pdf_pages" json:"max_pdf_pages"`

	OCRLanguages        string `yaml:"ocr_languages" json:"ocr_languages"`
	JurisdictionDefault string `yaml:"jurisdiction_default" json:"jurisdiction_default"`

	EnableHeadlessBrowser bool `yaml:"enable_headless_browser" json:"enable_headless_browser"`
	EnableAudioDownload   bool `yaml:"enable_audio_download" json:"enable_audio_download"`

	ReaderProxyURL string `yaml:"reader_proxy_url" json:"reader_proxy_url"`

	FetchTimeoutSeconds         int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`
	ReasonerTimeoutSeconds      int `yaml:"reasoner_timeout_seconds" json:"reasoner_timeout_seconds"`
	TranscribeTimeoutSeconds    int `yaml:"transcribe_timeout_seconds" json:"transcribe_timeout_seconds"`
	AudioDownloadTimeoutSeconds int `yaml:"audio_download_timeout_seconds" json:"audio_download_timeout_seconds"`

	MaxRetries    int `yaml:"max_retries" json:"max_retries"`
	BackoffBaseMS int `yaml:"backoff_base_ms" json:"backoff_base_ms"`

	BrowserPoolSize   int `yaml:"browser_pool_size" json:"browser_pool_size"`
	BrowserMaxAgeMins int `yaml:"browser_max_age_mins" json:"browser_max_age_mins"`
}

// MaxMediaBytes returns the media size cap in bytes.
func (p PipelineConfig) MaxMediaBytes() int64 {
	return int64(p.MaxMediaMB) * 1024 * 1024
}

// AnalysisConfig selects reasoner models and analysis behavior.
type AnalysisConfig struct {
	LightModel         string `yaml:"light_model" json:"light_model"`
	HeavyModel         string `yaml:"heavy_model" json:"heavy_model"`
	FallbackModel      string `yaml:"fallback_model" json:"fallback_model"`
	TranslateModel     string `yaml:"translate_model" json:"translate_model"`
	OCRModel           string `yaml:"ocr_model" json:"ocr_model"`
	FailsafeReanalysis bool   `yaml:"failsafe_reanalysis" json:"failsafe_reanalysis"`
}

// RulesConfig locates and tunes the rule pack repository.
type RulesConfig struct {
	Root      string `yaml:"root" json:"root"`
	HotReload bool   `yaml:"hot_reload" json:"hot_reload"`
}

// DatabaseConfig configures the audit store. Mode is one of
// "inline" (save before responding), "deferred" (save via the event bus
// recorder plugin) or "off".
type DatabaseConfig struct {
	DSN  string `yaml:"dsn" json:"dsn"`
	Mode string `yaml:"mode" json:"mode"`
}

// PluginConfig configures one handler plugin. Settings is a free-form
// JSON document interpreted by the plugin itself.
type PluginConfig struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Settings string `yaml:"settings" json:"settings"`
}
