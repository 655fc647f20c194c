package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Políticas ante un código de barras desconocido durante el escaneo.
const (
	UnknownBarcodeReject     = "reject"
	UnknownBarcodeAutoCreate = "auto_create"
)

// Modos de recálculo del puntaje de bancabilidad.
const (
	RecomputeInline = "inline"
	RecomputeKafka  = "kafka"
)

// Drivers de almacenamiento soportados.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Store  StoreConfig
	Ledger LedgerConfig
	Score  ScoreConfig
	Kafka  KafkaConfig
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
	MinConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN arma el connection string con URL encoding de la contraseña.
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

// JWTConfig configuración de validación de tokens.
type JWTConfig struct {
	Secret string
	Issuer string
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

// StoreConfig elige el backend de persistencia.
// "memory" es un almacén de un solo proceso (demo, pruebas); "postgres" es el de producción.
type StoreConfig struct {
	Driver string
	// SeedMerchantID perfil de demostración que se crea al iniciar con el driver "memory".
	SeedMerchantID string
}

// LedgerConfig parámetros del motor de movimientos de stock.
type LedgerConfig struct {
	OnUnknownBarcode string
	// LockTimeout 0 = esperar el bloqueo de fila sin límite.
	LockTimeout time.Duration
}

// ScoreConfig parámetros del puntaje de bancabilidad.
type ScoreConfig struct {
	RecomputeMode      string
	ActivityWindowDays int
}

// KafkaConfig conexión al broker para el recálculo diferido.
type KafkaConfig struct {
	Brokers    []string
	ScoreTopic string
	GroupID    string
}

// Load lee la configuración desde .env, archivo opcional "config" y variables de entorno.
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, LEDGER_LOCK_TIMEOUT, etc.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignoramos error si no existe .env

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	lockTimeout, err := getDuration(v, "LEDGER_LOCK_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "sylistock-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "sylistock"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "sylistock"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(getString(v, "STORE_DRIVER", StorePostgres)),
			SeedMerchantID: getString(v, "STORE_SEED_MERCHANT_ID", ""),
		},
		Ledger: LedgerConfig{
			OnUnknownBarcode: strings.ToLower(getString(v, "LEDGER_ON_UNKNOWN_BARCODE", UnknownBarcodeAutoCreate)),
			LockTimeout:      lockTimeout,
		},
		Score: ScoreConfig{
			RecomputeMode:      strings.ToLower(getString(v, "SCORE_RECOMPUTE_MODE", RecomputeInline)),
			ActivityWindowDays: getInt(v, "SCORE_ACTIVITY_WINDOW_DAYS", 30),
		},
		Kafka: KafkaConfig{
			Brokers:    getSlice(v, "KAFKA_BROKERS", []string{"localhost:9092"}),
			ScoreTopic: getString(v, "KAFKA_SCORE_TOPIC", "stock.movements"),
			GroupID:    getString(v, "KAFKA_GROUP_ID", "bankability"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("config: STORE_DRIVER inválido %q", c.Store.Driver)
	}
	switch c.Ledger.OnUnknownBarcode {
	case UnknownBarcodeReject, UnknownBarcodeAutoCreate:
	default:
		return fmt.Errorf("config: LEDGER_ON_UNKNOWN_BARCODE inválido %q", c.Ledger.OnUnknownBarcode)
	}
	switch c.Score.RecomputeMode {
	case RecomputeInline, RecomputeKafka:
	default:
		return fmt.Errorf("config: SCORE_RECOMPUTE_MODE inválido %q", c.Score.RecomputeMode)
	}
	if c.Ledger.LockTimeout < 0 {
		return fmt.Errorf("config: LEDGER_LOCK_TIMEOUT no puede ser negativo")
	}
	if c.Score.ActivityWindowDays <= 0 {
		return fmt.Errorf("config: SCORE_ACTIVITY_WINDOW_DAYS debe ser positivo")
	}
	return nil
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
		case int:
			return v.GetInt(key)
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

// getDuration acepta "2s", "500ms" o un entero en milisegundos.
func getDuration(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	if !v.IsSet(key) {
		return def, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s inválido: %w", key, err)
	}
	return d, nil
}

func getSlice(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, s := range strings.Split(v.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
