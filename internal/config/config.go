package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/socialbridge/internal/validation"
)

// Nombres canónicos de los proveedores soportados.
const (
	ProviderFacebook  = "facebook"
	ProviderInstagram = "instagram"
	ProviderTikTok    = "tiktok"
	ProviderGmail     = "gmail"
	ProviderWhatsApp  = "whatsapp"
)

// ProviderNames lista los proveedores en orden estable.
var ProviderNames = []string{
	ProviderFacebook,
	ProviderInstagram,
	ProviderTikTok,
	ProviderGmail,
	ProviderWhatsApp,
}

// ProviderConfig es la configuración OAuth de un proveedor externo.
// Los endpoints son opcionales: si están vacíos se usan los del proveedor.
type ProviderConfig struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	APIBaseURL   string   `yaml:"api_base_url"`
	APIVersion   string   `yaml:"api_version"`
}

type Config struct {
	App struct {
		// dev | prod | test
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		FrontendURL        string        `yaml:"frontend_url"` // si está, el callback redirige aquí con ?status=
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | sqlite | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL time.Duration `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Secret    string        `yaml:"secret"`
		Issuer    string        `yaml:"issuer"`
		AccessTTL time.Duration `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Security struct {
		SecretBoxMasterKey string `yaml:"secretbox_master_key"` // base64(32 bytes) para cifrar tokens en reposo
	} `yaml:"security"`

	State struct {
		TTL           time.Duration `yaml:"ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"state"`

	Refresh struct {
		SafetyMargin time.Duration `yaml:"safety_margin"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"refresh"`

	HTTPClient struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http_client"`

	Rate struct {
		Enabled     bool          `yaml:"enabled"`
		Window      time.Duration `yaml:"window"`
		MaxRequests int           `yaml:"max_requests"`

		Login struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login"`

		Callback struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"callback"`
	} `yaml:"rate"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`

	// ───────── OAuth Providers ─────────
	Providers struct {
		Facebook  ProviderConfig `yaml:"facebook"`
		Instagram ProviderConfig `yaml:"instagram"`
		TikTok    ProviderConfig `yaml:"tiktok"`
		Gmail     ProviderConfig `yaml:"gmail"`
		WhatsApp  ProviderConfig `yaml:"whatsapp"`
	} `yaml:"providers"`
}

// Load lee el YAML (si existe), aplica defaults y pisa con variables de entorno.
// Un path vacío o inexistente no es error: se arranca solo con env + defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, fmt.Errorf("config: storage.postgres.conn_max_lifetime: %w", err)
		}
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "socialbridge"
	}
	if c.Cache.Memory.DefaultTTL == 0 {
		c.Cache.Memory.DefaultTTL = 2 * time.Minute
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "socialbridge"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 24 * time.Hour
	}
	if c.State.TTL == 0 {
		c.State.TTL = time.Hour
	}
	if c.State.SweepInterval == 0 {
		c.State.SweepInterval = time.Hour
	}
	if c.Refresh.SafetyMargin == 0 {
		c.Refresh.SafetyMargin = 60 * time.Second
	}
	if c.HTTPClient.Timeout == 0 {
		c.HTTPClient.Timeout = 15 * time.Second
	}
	if c.Refresh.Timeout == 0 {
		c.Refresh.Timeout = c.HTTPClient.Timeout
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = time.Minute
	}
	if c.Rate.Callback.Limit == 0 {
		c.Rate.Callback.Limit = 30
	}
	if c.Rate.Callback.Window == 0 {
		c.Rate.Callback.Window = time.Minute
	}

	// Provider defaults
	fb := &c.Providers.Facebook
	if fb.APIVersion == "" {
		fb.APIVersion = "v22.0"
	}
	if len(fb.Scopes) == 0 {
		fb.Scopes = []string{"ads_management", "ads_read", "business_management", "pages_show_list", "pages_read_engagement"}
	}
	ig := &c.Providers.Instagram
	if ig.APIVersion == "" {
		ig.APIVersion = "v22.0"
	}
	if len(ig.Scopes) == 0 {
		ig.Scopes = []string{
			"instagram_business_basic",
			"instagram_business_manage_messages",
			"instagram_business_manage_comments",
			"instagram_business_content_publish",
			"instagram_business_manage_insights",
		}
	}
	tt := &c.Providers.TikTok
	if len(tt.Scopes) == 0 {
		tt.Scopes = []string{"user.info.basic", "user.info.stats", "video.publish", "video.list", "video.stats"}
	}
	gm := &c.Providers.Gmail
	if len(gm.Scopes) == 0 {
		gm.Scopes = []string{
			"https://www.googleapis.com/auth/gmail.send",
			"https://www.googleapis.com/auth/gmail.readonly",
		}
	}
	wa := &c.Providers.WhatsApp
	if wa.APIVersion == "" {
		wa.APIVersion = "v22.0"
	}
	if len(wa.Scopes) == 0 {
		wa.Scopes = []string{"whatsapp_business_management", "whatsapp_business_messaging", "business_management"}
	}
}

// Provider devuelve la configuración del proveedor por nombre.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	if p := c.providerRef(name); p != nil {
		return *p, true
	}
	return ProviderConfig{}, false
}

func (c *Config) providerRef(name string) *ProviderConfig {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderFacebook:
		return &c.Providers.Facebook
	case ProviderInstagram:
		return &c.Providers.Instagram
	case ProviderTikTok:
		return &c.Providers.TikTok
	case ProviderGmail:
		return &c.Providers.Gmail
	case ProviderWhatsApp:
		return &c.Providers.WhatsApp
	}
	return nil
}

// EnabledProviders devuelve los nombres de los proveedores habilitados.
func (c *Config) EnabledProviders() []string {
	var out []string
	for _, name := range ProviderNames {
		if p := c.providerRef(name); p != nil && p.Enabled {
			out = append(out, name)
		}
	}
	return out
}

// Validate verifica los valores críticos antes de levantar el servidor.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	} else if c.App.Env == "prod" && len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("jwt.secret must be at least 32 bytes in prod"))
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported", c.Storage.Driver))
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required when cache.kind=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q not supported", c.Cache.Kind))
	}
	if c.App.Env == "prod" && c.Security.SecretBoxMasterKey == "" {
		errs = append(errs, errors.New("security.secretbox_master_key is required in prod"))
	}
	for _, name := range ProviderNames {
		p := c.providerRef(name)
		if !p.Enabled {
			continue
		}
		if p.ClientID == "" || p.ClientSecret == "" || p.RedirectURI == "" {
			errs = append(errs, fmt.Errorf("providers.%s: client_id, client_secret and redirect_uri are required", name))
		}
		if err := validation.CheckScopes(p.Scopes); err != nil {
			errs = append(errs, fmt.Errorf("providers.%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP / LOG
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.Server.FrontendURL = v
	}
	if v, ok := getEnvDur("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvDur("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}

	// SECURITY
	if v, ok := getEnvStr("SECRETBOX_MASTER_KEY"); ok {
		c.Security.SecretBoxMasterKey = v
	}

	// STATE / REFRESH / HTTP CLIENT
	if v, ok := getEnvDur("STATE_TTL"); ok {
		c.State.TTL = v
	}
	if v, ok := getEnvDur("STATE_SWEEP_INTERVAL"); ok {
		c.State.SweepInterval = v
	}
	if v, ok := getEnvDur("REFRESH_SAFETY_MARGIN"); ok {
		c.Refresh.SafetyMargin = v
	}
	if v, ok := getEnvDur("REFRESH_TIMEOUT"); ok {
		c.Refresh.Timeout = v
	}
	if v, ok := getEnvDur("HTTP_CLIENT_TIMEOUT"); ok {
		c.HTTPClient.Timeout = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvDur("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}
	if v, ok := getEnvInt("RATE_CALLBACK_LIMIT"); ok {
		c.Rate.Callback.Limit = v
	}
	if v, ok := getEnvDur("RATE_CALLBACK_WINDOW"); ok {
		c.Rate.Callback.Window = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}

	// ───── Providers ─────
	// <PROVIDER>_ENABLED, _CLIENT_ID, _CLIENT_SECRET, _REDIRECT_URI, _SCOPES,
	// _AUTH_URL, _TOKEN_URL, _API_BASE_URL, _API_VERSION
	for _, name := range ProviderNames {
		applyProviderEnv(strings.ToUpper(name), c.providerRef(name))
	}
	// TikTok usa client_key en su documentación.
	if v, ok := getEnvStr("TIKTOK_CLIENT_KEY"); ok && c.Providers.TikTok.ClientID == "" {
		c.Providers.TikTok.ClientID = v
	}
}

func applyProviderEnv(prefix string, p *ProviderConfig) {
	if v, ok := getEnvBool(prefix + "_ENABLED"); ok {
		p.Enabled = v
	}
	if v, ok := getEnvStr(prefix + "_CLIENT_ID"); ok {
		p.ClientID = v
	}
	if v, ok := getEnvStr(prefix + "_CLIENT_SECRET"); ok {
		p.ClientSecret = v
	}
	if v, ok := getEnvStr(prefix + "_REDIRECT_URI"); ok {
		p.RedirectURI = v
	}
	if v, ok := getEnvCSV(prefix + "_SCOPES"); ok && len(v) > 0 {
		p.Scopes = v
	}
	if v, ok := getEnvStr(prefix + "_AUTH_URL"); ok {
		p.AuthURL = v
	}
	if v, ok := getEnvStr(prefix + "_TOKEN_URL"); ok {
		p.TokenURL = v
	}
	if v, ok := getEnvStr(prefix + "_API_BASE_URL"); ok {
		p.APIBaseURL = v
	}
	if v, ok := getEnvStr(prefix + "_API_VERSION"); ok {
		p.APIVersion = v
	}
}
