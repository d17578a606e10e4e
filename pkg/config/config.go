package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	HTTP         HTTPConfig
	Share        ShareConfig
	Confirmation ConfirmationConfig
	Email        EmailConfig
	Lifecycle    LifecycleConfig
	Payments     PaymentsConfig
	Metrics      MetricsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	// PublicURL base para construir enlaces públicos (/public/budgets/view/{token}).
	PublicURL string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	ForceIPv4   bool // Docker suele no tener IPv6
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShareConfig vigencia de los enlaces públicos.
type ShareConfig struct {
	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

// ConfirmationConfig vigencia por tipo de token de confirmación.
type ConfirmationConfig struct {
	EmailVerificationTTL time.Duration
	PasswordResetTTL     time.Duration
	ActionTTL            time.Duration
}

// EmailConfig SMTP y parámetros de la cola.
type EmailConfig struct {
	SMTPHost     string // vacío = sender de solo log
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
	FromName     string
	MaxAttempts  int
	BackoffBase  time.Duration
	BackoffMax   time.Duration
	BatchSize    int
	PollInterval time.Duration
	StaleAfter   time.Duration // processing sin actividad se vuelve a reclamar
}

// SMTPEnabled informa si hay servidor SMTP configurado.
func (c EmailConfig) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// LifecycleConfig política de transiciones de estado.
type LifecycleConfig struct {
	// TransitionsFile YAML opcional; vacío = se registra cualquier transición.
	TransitionsFile string
}

// PaymentsConfig webhook de la pasarela.
type PaymentsConfig struct {
	WebhookSecret string
}

// MetricsConfig exposición Prometheus.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:       getString(v, "APP_ENV", "development"),
			Name:      getString(v, "APP_NAME", "gestion-api"),
			LogLevel:  getString(v, "LOG_LEVEL", "info"),
			PublicURL: strings.TrimRight(getString(v, "APP_PUBLIC_URL", "http://localhost:8080"), "/"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "gestion"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
			ForceIPv4:   getBool(v, "DB_FORCE_IPV4", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "gestion-api"),
		},
		HTTP: HTTPConfig{
			Host:            getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:            getInt(v, "HTTP_PORT", 8080),
			ShutdownTimeout: getDuration(v, "HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Share: ShareConfig{
			DefaultTTL: getDuration(v, "SHARE_DEFAULT_TTL", 7*24*time.Hour),
			MaxTTL:     getDuration(v, "SHARE_MAX_TTL", 90*24*time.Hour),
		},
		Confirmation: ConfirmationConfig{
			EmailVerificationTTL: getDuration(v, "CONFIRM_EMAIL_TTL", 48*time.Hour),
			PasswordResetTTL:     getDuration(v, "CONFIRM_PASSWORD_RESET_TTL", time.Hour),
			ActionTTL:            getDuration(v, "CONFIRM_ACTION_TTL", 24*time.Hour),
		},
		Email: EmailConfig{
			SMTPHost:     getString(v, "SMTP_HOST", ""),
			SMTPPort:     getInt(v, "SMTP_PORT", 587),
			SMTPUser:     getString(v, "SMTP_USER", ""),
			SMTPPassword: getString(v, "SMTP_PASSWORD", ""),
			From:         getString(v, "EMAIL_FROM", "no-reply@localhost"),
			FromName:     getString(v, "EMAIL_FROM_NAME", "Gestión"),
			MaxAttempts:  getInt(v, "EMAIL_MAX_ATTEMPTS", 5),
			BackoffBase:  getDuration(v, "EMAIL_BACKOFF_BASE", 30*time.Second),
			BackoffMax:   getDuration(v, "EMAIL_BACKOFF_MAX", time.Hour),
			BatchSize:    getInt(v, "EMAIL_BATCH_SIZE", 20),
			PollInterval: getDuration(v, "EMAIL_POLL_INTERVAL", 10*time.Second),
			StaleAfter:   getDuration(v, "EMAIL_STALE_AFTER", 10*time.Minute),
		},
		Lifecycle: LifecycleConfig{
			TransitionsFile: getString(v, "LIFECYCLE_TRANSITIONS_FILE", ""),
		},
		Payments: PaymentsConfig{
			WebhookSecret: getString(v, "PAYMENTS_WEBHOOK_SECRET", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
			Path:    getString(v, "METRICS_PATH", "/metrics"),
		},
	}

	if cfg.Email.MaxAttempts < 1 {
		return nil, fmt.Errorf("config: EMAIL_MAX_ATTEMPTS debe ser >= 1")
	}
	if cfg.Share.DefaultTTL <= 0 || cfg.Share.DefaultTTL > cfg.Share.MaxTTL {
		return nil, fmt.Errorf("config: SHARE_DEFAULT_TTL debe estar en (0, SHARE_MAX_TTL]")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

// getDuration acepta "90s", "2h" o segundos enteros.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return def
}
