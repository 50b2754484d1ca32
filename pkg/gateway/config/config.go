package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all process configuration. Secrets are required and validated
// once at start-up; the process must not serve traffic with any of them
// missing.
type Config struct {
	Addr string

	// Room platform (VideoSDK-compatible).
	VideoSDKAuthToken   string
	VideoSDKSIPUsername string
	VideoSDKSIPPassword string
	VideoSDKBaseURL     string
	VideoSDKSIPDomain   string

	// Conversational AI platform.
	GoogleAPIKey string
	GeminiModel  string
	GeminiVoice  string

	// Telephony provider (Twilio-compatible).
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioNumber     string
	TwilioBaseURL    string

	// Start-up defaults for the name-keyed registries.
	DefaultProvider string
	DefaultAgent    string

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration

	// Upstream HTTP client defaults.
	UpstreamConnectTimeout        time.Duration
	UpstreamResponseHeaderTimeout time.Duration
}

// LoadFromEnv reads configuration from the environment and validates it.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                          envOr("CALLBRIDGE_ADDR", ":8000"),
		VideoSDKAuthToken:             os.Getenv("VIDEOSDK_AUTH_TOKEN"),
		VideoSDKSIPUsername:           os.Getenv("VIDEOSDK_SIP_USERNAME"),
		VideoSDKSIPPassword:           os.Getenv("VIDEOSDK_SIP_PASSWORD"),
		VideoSDKBaseURL:               envOr("CALLBRIDGE_VIDEOSDK_BASE_URL", "https://api.videosdk.live/v2"),
		VideoSDKSIPDomain:             envOr("CALLBRIDGE_VIDEOSDK_SIP_DOMAIN", "sip.videosdk.live"),
		GoogleAPIKey:                  os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:                   envOr("CALLBRIDGE_GEMINI_MODEL", "gemini-2.0-flash-live-001"),
		GeminiVoice:                   envOr("CALLBRIDGE_GEMINI_VOICE", "Leda"),
		TwilioAccountSID:              os.Getenv("TWILIO_SID"),
		TwilioAuthToken:               os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioNumber:                  os.Getenv("TWILIO_NUMBER"),
		TwilioBaseURL:                 envOr("CALLBRIDGE_TWILIO_BASE_URL", "https://api.twilio.com/2010-04-01"),
		DefaultProvider:               envOr("CALLBRIDGE_DEFAULT_PROVIDER", "twilio"),
		DefaultAgent:                  envOr("CALLBRIDGE_DEFAULT_AGENT", "gemini"),
		ReadHeaderTimeout:             envDurationOr("CALLBRIDGE_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:                   envDurationOr("CALLBRIDGE_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod:           envDurationOr("CALLBRIDGE_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
		UpstreamConnectTimeout:        envDurationOr("CALLBRIDGE_CONNECT_TIMEOUT", 5*time.Second),
		UpstreamResponseHeaderTimeout: envDurationOr("CALLBRIDGE_RESPONSE_HEADER_TIMEOUT", 30*time.Second),
	}

	required := []struct {
		name  string
		value string
	}{
		{"VIDEOSDK_AUTH_TOKEN", cfg.VideoSDKAuthToken},
		{"VIDEOSDK_SIP_USERNAME", cfg.VideoSDKSIPUsername},
		{"VIDEOSDK_SIP_PASSWORD", cfg.VideoSDKSIPPassword},
		{"GOOGLE_API_KEY", cfg.GoogleAPIKey},
		{"TWILIO_SID", cfg.TwilioAccountSID},
		{"TWILIO_AUTH_TOKEN", cfg.TwilioAuthToken},
		{"TWILIO_NUMBER", cfg.TwilioNumber},
	}
	missing := make([]string, 0, len(required))
	for _, v := range required {
		if strings.TrimSpace(v.value) == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if strings.TrimSpace(cfg.VideoSDKBaseURL) == "" {
		return Config{}, fmt.Errorf("CALLBRIDGE_VIDEOSDK_BASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.VideoSDKSIPDomain) == "" {
		return Config{}, fmt.Errorf("CALLBRIDGE_VIDEOSDK_SIP_DOMAIN must not be empty")
	}
	if strings.TrimSpace(cfg.TwilioBaseURL) == "" {
		return Config{}, fmt.Errorf("CALLBRIDGE_TWILIO_BASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.GeminiModel) == "" {
		return Config{}, fmt.Errorf("CALLBRIDGE_GEMINI_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.DefaultProvider) == "" {
		return Config{}, fmt.Errorf("CALLBRIDGE_DEFAULT_PROVIDER must not be empty")
	}
	if strings.TrimSpace(cfg.DefaultAgent) == "" {
		return Config{}, fmt.Errorf("CALLBRIDGE_DEFAULT_AGENT must not be empty")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("CALLBRIDGE_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("CALLBRIDGE_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("CALLBRIDGE_SHUTDOWN_GRACE_PERIOD must be > 0")
	}
	if cfg.UpstreamConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("CALLBRIDGE_CONNECT_TIMEOUT must be > 0")
	}
	if cfg.UpstreamResponseHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("CALLBRIDGE_RESPONSE_HEADER_TIMEOUT must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
