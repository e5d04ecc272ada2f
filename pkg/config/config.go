package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config configuración global de la aplicación (cargada desde env o archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Backend   BackendConfig
	Scan      ScanConfig
	Label     LabelConfig
	Locations LocationsConfig
	NATS      NATSConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
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
	ForceIPv4   bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN connection string con la contraseña escapada.
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
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig backend REST de inventario usado por la estación de escaneo.
type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// ScanConfig flujo de doble escaneo.
type ScanConfig struct {
	PersistTimeout time.Duration // tope de la llamada de persistencia
	IdleTTL        time.Duration // sesiones sin actividad se descartan
	PublicBaseURL  string        // base de las URLs impresas en los QR
}

// LabelConfig impresión de etiquetas.
type LabelConfig struct {
	AssetTimeout time.Duration
	SettleDelay  time.Duration
	SpoolDir     string
	Locale       string
}

// LocationsConfig catálogo de ubicaciones.
type LocationsConfig struct {
	CatalogPath string // YAML; vacío = catálogo por defecto
}

// NATSConfig notificaciones de traslados.
type NATSConfig struct {
	URL     string // vacío = sin notificaciones
	Subject string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, SCAN_PERSIST_TIMEOUT, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // opcional

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // opcional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "aviation-inventory"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "aviation_inventory"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 10),
			ForceIPv4:   getBool(v, "DB_FORCE_IPV4", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "aviation-inventory"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Backend: BackendConfig{
			BaseURL: getString(v, "BACKEND_URL", "http://localhost:8080"),
			Token:   getString(v, "BACKEND_TOKEN", ""),
			Timeout: getDuration(v, "BACKEND_TIMEOUT", 10*time.Second),
		},
		Scan: ScanConfig{
			PersistTimeout: getDuration(v, "SCAN_PERSIST_TIMEOUT", 15*time.Second),
			IdleTTL:        getDuration(v, "SCAN_SESSION_TTL", 30*time.Minute),
			PublicBaseURL:  getString(v, "SCAN_PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		Label: LabelConfig{
			AssetTimeout: getDuration(v, "LABEL_ASSET_TIMEOUT", 4*time.Second),
			SettleDelay:  getDuration(v, "LABEL_SETTLE_DELAY", 300*time.Millisecond),
			SpoolDir:     getString(v, "LABEL_SPOOL_DIR", "./spool"),
			Locale:       getString(v, "LABEL_LOCALE", "es-CO"),
		},
		Locations: LocationsConfig{
			CatalogPath: getString(v, "LOCATIONS_FILE", ""),
		},
		NATS: NATSConfig{
			URL:     getString(v, "NATS_URL", ""),
			Subject: getString(v, "NATS_SUBJECT", "inventory.parts.moved"),
		},
	}

	if cfg.Scan.PersistTimeout <= 0 {
		return nil, fmt.Errorf("config: SCAN_PERSIST_TIMEOUT debe ser positivo")
	}
	return cfg, nil
}

// IsProduction indica si APP_ENV es production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
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
			n, err := strconv.Atoi(v.GetString(key))
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

// getDuration acepta "15s", "500ms" o un entero en segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
