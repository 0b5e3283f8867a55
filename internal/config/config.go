package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	SMS      SMSConfig      `mapstructure:"sms"`
	CRM      CRMConfig      `mapstructure:"crm"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
	Issuer             string        `mapstructure:"issuer"`
}

// SMSConfig Chatinfy gateway credentials for out-of-band OTP/notification delivery.
type SMSConfig struct {
	GatewayURL    string `mapstructure:"gateway_url"`
	LicenseNumber string `mapstructure:"license_number"`
	APIKey        string `mapstructure:"api_key"`
	AdminPhone    string `mapstructure:"admin_phone"`
}

// CRMConfig business settings for the service lifecycle engine.
// Injected into the CRM services instead of being read ambiently.
type CRMConfig struct {
	OTPTTLSeconds           int    `mapstructure:"otp_ttl_seconds"`
	OTPLength               int    `mapstructure:"otp_length"`
	OTPHashSalt             string `mapstructure:"otp_hash_salt"`
	BookingWindowDays       int    `mapstructure:"booking_window_days"`
	MilestoneIntervalMonths int    `mapstructure:"milestone_interval_months"`
	MilestoneToleranceDays  int    `mapstructure:"milestone_tolerance_days"`
	DevReturnOTP            bool   `mapstructure:"dev_return_otp"`
	DevSMSEcho              bool   `mapstructure:"dev_sms_echo"`
	AllowCustomerCardCreate bool   `mapstructure:"allow_customer_card_create"`
}

// OTPTTL returns the challenge validity window as a duration.
func (c *CRMConfig) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLSeconds) * time.Second
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file, environment variables only
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")

	v.SetDefault("jwt.access_token_expire", "24h")
	v.SetDefault("jwt.refresh_token_expire", "168h")
	v.SetDefault("jwt.issuer", "vst-crm")

	v.SetDefault("crm.otp_ttl_seconds", 600)
	v.SetDefault("crm.otp_length", 4)
	v.SetDefault("crm.otp_hash_salt", "vst-crm-salt")
	v.SetDefault("crm.booking_window_days", 30)
	v.SetDefault("crm.milestone_interval_months", 3)
	v.SetDefault("crm.milestone_tolerance_days", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Database
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// MinIO
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// SMS gateway
	v.BindEnv("sms.gateway_url", "CHATINFY_GATEWAY_URL")
	v.BindEnv("sms.license_number", "CHATINFY_LICENSE_NUMBER")
	v.BindEnv("sms.api_key", "CHATINFY_API_KEY")
	v.BindEnv("sms.admin_phone", "ADMIN_PHONE")

	// CRM
	v.BindEnv("crm.otp_hash_salt", "CRM_OTP_HASH_SALT")
	v.BindEnv("crm.dev_return_otp", "CRM_DEV_RETURN_OTP")
	v.BindEnv("crm.dev_sms_echo", "CRM_DEV_SMS_TEST")
}

// GetEnvOrDefault returns an environment variable or a fallback value.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
