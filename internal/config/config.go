package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// development | staging | production
		Env  string `yaml:"env"`
		Name string `yaml:"name"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes       int64         `yaml:"max_body_bytes"`
		MaxAvatarBytes     int64         `yaml:"max_avatar_bytes"`
	} `yaml:"server"`

	Storage struct {
		Driver          string        `yaml:"driver"` // postgres | sqlite
		DSN             string        `yaml:"dsn"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		AutoMigrate     bool          `yaml:"auto_migrate"`
	} `yaml:"storage"`

	Cache struct {
		Kind   string `yaml:"kind"` // memory | redis
		Prefix string `yaml:"prefix"`
		Redis  struct {
			URL      string `yaml:"url"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			CleanupInterval time.Duration `yaml:"cleanup_interval"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		ActivationSecret string        `yaml:"activation_secret"`
		AccessSecret     string        `yaml:"access_secret"`
		RefreshSecret    string        `yaml:"refresh_secret"`
		ActivationTTL    time.Duration `yaml:"activation_ttl"`
		// AccessExpireMinutes y RefreshExpireDays gobiernan tanto el token como la cookie.
		AccessExpireMinutes int `yaml:"access_expire_minutes"`
		RefreshExpireDays   int `yaml:"refresh_expire_days"`
	} `yaml:"jwt"`

	Cookies struct {
		Domain   string `yaml:"domain"`
		SameSite string `yaml:"samesite"`
	} `yaml:"cookies"`

	Session struct {
		// TTL del Session Entry. Vacío => vida del refresh token. Negativo => sin expiración.
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
	} `yaml:"security"`

	Media struct {
		Folder string `yaml:"folder"`
		S3     struct {
			Endpoint     string `yaml:"endpoint"`
			Region       string `yaml:"region"`
			Bucket       string `yaml:"bucket"`
			AccessKey    string `yaml:"access_key"`
			SecretKey    string `yaml:"secret_key"`
			PublicURL    string `yaml:"public_url"`
			UsePathStyle bool   `yaml:"use_path_style"`
		} `yaml:"s3"`
	} `yaml:"media"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
	} `yaml:"rate"`

	Log struct {
		Level  string        `yaml:"level"`
		File   string        `yaml:"file"`
		MaxAge time.Duration `yaml:"max_age"`
	} `yaml:"log"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Load lee el YAML (opcional: path vacío o inexistente => sólo defaults + env),
// aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: defaults + env
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.ApplyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults completa los valores vacíos. Es idempotente.
func (c *Config) ApplyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.Name == "" {
		c.App.Name = "userhub"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
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
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20 // 1MB
	}
	if c.Server.MaxAvatarBytes == 0 {
		c.Server.MaxAvatarBytes = 8 << 20 // 8MB (base64)
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 5
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "userhub"
	}
	if c.Cache.Memory.CleanupInterval == 0 {
		c.Cache.Memory.CleanupInterval = time.Minute
	}
	if c.JWT.ActivationTTL == 0 {
		c.JWT.ActivationTTL = 30 * time.Minute
	}
	if c.JWT.AccessExpireMinutes == 0 {
		c.JWT.AccessExpireMinutes = 30
	}
	if c.JWT.RefreshExpireDays == 0 {
		c.JWT.RefreshExpireDays = 3
	}
	if c.Cookies.SameSite == "" {
		c.Cookies.SameSite = "lax"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = c.RefreshTTL()
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.Username
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 6
	}
	if c.Media.Folder == "" {
		c.Media.Folder = "avatars"
	}
	if c.Media.S3.Region == "" {
		c.Media.S3.Region = "us-east-1"
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 20
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// IsDevelopment indica si las cookies pueden viajar sin Secure.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.App.Env)) {
	case "", "dev", "development", "local", "test":
		return true
	}
	return false
}

// AccessTTL vida del access token y su cookie.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessExpireMinutes) * time.Minute
}

// RefreshTTL vida del refresh token y su cookie.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshExpireDays) * 24 * time.Hour
}

// MediaEnabled indica si hay un bucket configurado para avatars.
func (c *Config) MediaEnabled() bool {
	return strings.TrimSpace(c.Media.S3.Bucket) != ""
}

// Validate verifica los valores críticos.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWT.ActivationSecret) == "" {
		errs = append(errs, errors.New("jwt.activation_secret (JWT_ACTIVATION_TOKEN_SECRET) is required"))
	}
	if strings.TrimSpace(c.JWT.AccessSecret) == "" {
		errs = append(errs, errors.New("jwt.access_secret (JWT_ACCESS_TOKEN_SECRET) is required"))
	}
	if strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		errs = append(errs, errors.New("jwt.refresh_secret (JWT_REFRESH_TOKEN_SECRET) is required"))
	}
	if !c.IsDevelopment() && c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("jwt access and refresh secrets must differ outside development"))
	}
	if c.JWT.AccessExpireMinutes < 0 || c.JWT.RefreshExpireDays < 0 {
		errs = append(errs, errors.New("jwt expirations must be positive"))
	}

	switch c.Storage.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (postgres|sqlite)", c.Storage.Driver))
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		errs = append(errs, errors.New("storage.dsn (DATABASE_URL) is required"))
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.URL == "" && c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.url or cache.redis.addr is required for redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q not supported (memory|redis)", c.Cache.Kind))
	}

	switch c.SMTP.TLS {
	case "auto", "starttls", "ssl", "none":
	default:
		errs = append(errs, fmt.Errorf("smtp.tls %q not supported", c.SMTP.TLS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ---- Helpers env ----

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
func getEnvInt64(key string) (int64, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
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

// applyEnvOverrides pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	} else if v, ok := getEnvStr("NODE_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := getEnvCSV("ORIGIN"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvDur("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvDur("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}
	if v, ok := getEnvInt64("SERVER_MAX_AVATAR_BYTES"); ok {
		c.Server.MaxAvatarBytes = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	} else if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_OPEN_CONNS"); ok {
		c.Storage.MaxOpenConns = v
	}
	if v, ok := getEnvBool("STORAGE_AUTO_MIGRATE"); ok {
		c.Storage.AutoMigrate = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_URL"); ok {
		c.Cache.Redis.URL = v
		if _, set := getEnvStr("CACHE_KIND"); !set {
			c.Cache.Kind = "redis"
		}
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("CACHE_PREFIX"); ok {
		c.Cache.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ACTIVATION_TOKEN_SECRET"); ok {
		c.JWT.ActivationSecret = v
	} else if v, ok := getEnvStr("ACTIVATION_SECRET"); ok {
		c.JWT.ActivationSecret = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TOKEN_SECRET"); ok {
		c.JWT.AccessSecret = v
	} else if v, ok := getEnvStr("ACCESS_TOKEN"); ok {
		c.JWT.AccessSecret = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TOKEN_SECRET"); ok {
		c.JWT.RefreshSecret = v
	} else if v, ok := getEnvStr("REFRESH_TOKEN"); ok {
		c.JWT.RefreshSecret = v
	}
	if v, ok := getEnvInt("JWT_ACCESS_TOKEN_EXPIRE"); ok {
		c.JWT.AccessExpireMinutes = v
	}
	if v, ok := getEnvInt("JWT_REFRESH_TOKEN_EXPIRE"); ok {
		c.JWT.RefreshExpireDays = v
	}
	if v, ok := getEnvDur("JWT_ACTIVATION_TTL"); ok {
		c.JWT.ActivationTTL = v
	}

	// COOKIES / SESSION
	if v, ok := getEnvStr("COOKIE_DOMAIN"); ok {
		c.Cookies.Domain = v
	}
	if v, ok := getEnvStr("COOKIE_SAMESITE"); ok {
		c.Cookies.SameSite = v
	}
	if v, ok := getEnvDur("SESSION_TTL"); ok {
		c.Session.TTL = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_MAIL"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// SECURITY
	if v, ok := getEnvInt("SECURITY_PASSWORD_POLICY_MIN_LENGTH"); ok {
		c.Security.PasswordPolicy.MinLength = v
	}
	if v, ok := getEnvBool("SECURITY_PASSWORD_POLICY_REQUIRE_UPPER"); ok {
		c.Security.PasswordPolicy.RequireUpper = v
	}
	if v, ok := getEnvBool("SECURITY_PASSWORD_POLICY_REQUIRE_LOWER"); ok {
		c.Security.PasswordPolicy.RequireLower = v
	}
	if v, ok := getEnvBool("SECURITY_PASSWORD_POLICY_REQUIRE_DIGIT"); ok {
		c.Security.PasswordPolicy.RequireDigit = v
	}
	if v, ok := getEnvBool("SECURITY_PASSWORD_POLICY_REQUIRE_SYMBOL"); ok {
		c.Security.PasswordPolicy.RequireSymbol = v
	}

	// MEDIA
	if v, ok := getEnvStr("MEDIA_FOLDER"); ok {
		c.Media.Folder = v
	}
	if v, ok := getEnvStr("S3_ENDPOINT"); ok {
		c.Media.S3.Endpoint = v
	}
	if v, ok := getEnvStr("S3_REGION"); ok {
		c.Media.S3.Region = v
	}
	if v, ok := getEnvStr("S3_BUCKET"); ok {
		c.Media.S3.Bucket = v
	}
	if v, ok := getEnvStr("S3_ACCESS_KEY"); ok {
		c.Media.S3.AccessKey = v
	}
	if v, ok := getEnvStr("S3_SECRET_KEY"); ok {
		c.Media.S3.SecretKey = v
	}
	if v, ok := getEnvStr("S3_PUBLIC_URL"); ok {
		c.Media.S3.PublicURL = v
	}
	if v, ok := getEnvBool("S3_USE_PATH_STYLE"); ok {
		c.Media.S3.UsePathStyle = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// LOG / METRICS
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("LOG_FILE"); ok {
		c.Log.File = v
	}
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}
