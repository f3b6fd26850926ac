package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"payja-lending/internal/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-level config
type ServerConfig struct {
	Port int `yaml:"port"`
}

type ServiceConfig struct {
	Name             string `yaml:"name"`
	OtelCollectorURL string `yaml:"otel_collector_url"`
	// Timezone names the calendar used for daily ledger exports.
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	LogLevel string `yaml:"level"`
}

// MongoDB connection config
type MongoConfig struct {
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	URI             string        `yaml:"uri"`
	DBName          string        `yaml:"db_name"`
	MaxPoolSize     uint64        `yaml:"max_pool_size"`
	MinPoolSize     uint64        `yaml:"min_pool_size"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_minutes"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout_seconds"`
}

// Redis connection config
type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	EnableTLS      bool          `yaml:"enable_tls"`
	ConnectTimeout time.Duration `yaml:"connect_timeout_seconds"`
	CertContent    string        `yaml:"cert_content"`
}

// Kafka producer config for loan lifecycle events
type KafkaConfig struct {
	Server           string `yaml:"server"`
	LoanEventsTopic  string `yaml:"loan_events_topic"`
	SecurityProtocol string `yaml:"security_protocol"`
	SASLMechanism    string `yaml:"sasl_mechanism"`
	SASLUsername     string `yaml:"sasl_username"`
	SASLPassword     string `yaml:"sasl_password"`
	ClientID         string `yaml:"client_id"`
}

type PubSubConfig struct {
	ProjectID string `yaml:"project_id"`
	SmsTopic  string `yaml:"sms_topic"`
}

type GCSConfig struct {
	BucketName      string `yaml:"bucket_name"`
	FolderName      string `yaml:"folder_name"`
	CredentialsFile string `yaml:"credentials_file"`
}

type SFTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	LedgerDir string `yaml:"ledger_dir"`
}

type SessionConfig struct {
	OTPLength          int `yaml:"otp_length"`
	OTPTTLSeconds      int `yaml:"otp_ttl_seconds"`
	OTPMaxAttempts     int `yaml:"otp_max_attempts"`
	OTPHashCost        int `yaml:"otp_hash_cost"`
	ReplyCacheSeconds  int `yaml:"reply_cache_seconds"`
	HandlerTimeoutSecs int `yaml:"handler_timeout_seconds"`
	// DuplicateWindowSecs bounds how long after a turn the same input is
	// treated as a gateway re-delivery rather than a new key press.
	DuplicateWindowSecs int `yaml:"duplicate_window_seconds"`
}

type LoanConfig struct {
	MinAmount       float64 `yaml:"min_amount"`
	ReferenceNodeID int64   `yaml:"reference_node_id"`
	AutoDisburse    bool    `yaml:"auto_disburse"`
	Channel         string  `yaml:"channel"`
}

// CommissionConfig holds the global rates snapshotted onto every new loan.
type CommissionConfig struct {
	BankRate       float64 `yaml:"bank_rate"`
	AggregatorRate float64 `yaml:"aggregator_rate"`
	WalletRate     float64 `yaml:"wallet_rate"`
}

type CrossValidationConfig struct {
	ApprovalThreshold float64 `yaml:"approval_threshold"`
	LowCreditScore    int     `yaml:"low_credit_score"`
	MidCreditScore    int     `yaml:"mid_credit_score"`
	LowBandFactor     float64 `yaml:"low_band_factor"`
	MidBandFactor     float64 `yaml:"mid_band_factor"`
	ActiveDebtFactor  float64 `yaml:"active_debt_factor"`
	MinViableAmount   float64 `yaml:"min_viable_amount"`
}

type SettlementConfig struct {
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
	PayjaAccount   string `yaml:"payja_account"`
	EmolaAccount   string `yaml:"emola_account"`
}

// WalletConfig points at the e-Mola wallet gateway.
type WalletConfig struct {
	LookupURL          string `yaml:"lookup_url"`
	CreditURL          string `yaml:"credit_url"`
	APIKey             string `yaml:"api_key"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
}

type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms"`
}

type OverdueSweepConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"interval_minutes"`
}

type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// AppConfig is the main config struct that holds all configs
type AppConfig struct {
	Server          ServerConfig          `yaml:"server"`
	Service         ServiceConfig         `yaml:"service"`
	Logging         LogConfig             `yaml:"logging"`
	Mongo           MongoConfig           `yaml:"mongo"`
	Redis           RedisConfig           `yaml:"redis"`
	Kafka           KafkaConfig           `yaml:"kafka"`
	PubSub          PubSubConfig          `yaml:"pubsub"`
	GCS             GCSConfig             `yaml:"gcs"`
	SFTP            SFTPConfig            `yaml:"sftp"`
	Session         SessionConfig         `yaml:"session"`
	Loan            LoanConfig            `yaml:"loan"`
	Commission      CommissionConfig      `yaml:"commission"`
	CrossValidation CrossValidationConfig `yaml:"cross_validation"`
	Settlement      SettlementConfig      `yaml:"settlement"`
	Wallet          WalletConfig          `yaml:"wallet"`
	Retry           RetryConfig           `yaml:"retry"`
	OverdueSweep    OverdueSweepConfig    `yaml:"overdue_sweep"`
	WorkerPool      WorkerPoolConfig      `yaml:"worker_pool"`
}

// nolint: funlen
func assignDefaultConfigValues(cfg *AppConfig) *AppConfig {

	// server config defaults
	cfg.Server.Port = GetEnvOrDefaultAsInt("SERVER_PORT", orInt(cfg.Server.Port, 8080))
	cfg.Service.Name = GetEnvOrDefaultAsString("SERVICE_NAME", orString(cfg.Service.Name, "payja-lending"))
	cfg.Service.OtelCollectorURL = GetEnvOrDefaultAsString("OTEL_COLLECTOR_URL", cfg.Service.OtelCollectorURL)
	cfg.Service.Timezone = GetEnvOrDefaultAsString("SERVICE_TIMEZONE", orString(cfg.Service.Timezone, "Africa/Maputo"))

	// log config defaults
	cfg.Logging.LogLevel = GetEnvOrDefaultAsString("LOGGING_LEVEL", orString(cfg.Logging.LogLevel, "info"))

	// MongoDB config defaults
	cfg.Mongo.URI = GetEnvOrDefaultAsString("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.DBName = GetEnvOrDefaultAsString("MONGO_DB_NAME", cfg.Mongo.DBName)
	cfg.Mongo.Username = GetEnvOrDefaultAsString("MONGO_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = GetEnvOrDefaultAsString("MONGO_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.MaxPoolSize = GetEnvOrDefaultAsUint64("MONGO_MAX_POOL_SIZE", cfg.Mongo.MaxPoolSize)
	cfg.Mongo.MinPoolSize = GetEnvOrDefaultAsUint64("MONGO_MIN_POOL_SIZE", cfg.Mongo.MinPoolSize)
	cfg.Mongo.MaxConnIdleTime = time.Duration(GetEnvOrDefaultAsInt("MONGO_MAX_CONN_IDLE_MINUTES", 30)) * time.Minute
	cfg.Mongo.ConnectTimeout = time.Duration(GetEnvOrDefaultAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second

	// Redis config defaults
	cfg.Redis.Addr = GetEnvOrDefaultAsString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = GetEnvOrDefaultAsString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvOrDefaultAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.EnableTLS = GetEnvOrDefaultAsInt("REDIS_ENABLE_TLS", boolToInt(cfg.Redis.EnableTLS)) == 1
	cfg.Redis.ConnectTimeout = time.Duration(GetEnvOrDefaultAsInt("REDIS_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.Redis.CertContent = GetEnvOrDefaultAsString("REDIS_TLS_CERT", cfg.Redis.CertContent)

	// Kafka config defaults
	cfg.Kafka.Server = GetEnvOrDefaultAsString("KAFKA_SERVER", cfg.Kafka.Server)
	cfg.Kafka.LoanEventsTopic = GetEnvOrDefaultAsString("KAFKA_LOAN_EVENTS_TOPIC",
		orString(cfg.Kafka.LoanEventsTopic, "payja.loan.events"))
	cfg.Kafka.SecurityProtocol = GetEnvOrDefaultAsString("KAFKA_SECURITY_PROTOCOL", cfg.Kafka.SecurityProtocol)
	cfg.Kafka.SASLMechanism = GetEnvOrDefaultAsString("KAFKA_SASL_MECHANISM", cfg.Kafka.SASLMechanism)
	cfg.Kafka.SASLUsername = GetEnvOrDefaultAsString("KAFKA_SASL_USERNAME", cfg.Kafka.SASLUsername)
	cfg.Kafka.SASLPassword = GetEnvOrDefaultAsString("KAFKA_SASL_PASSWORD", cfg.Kafka.SASLPassword)
	cfg.Kafka.ClientID = GetEnvOrDefaultAsString("KAFKA_CLIENT_ID", cfg.Kafka.ClientID)

	// PubSub config defaults
	cfg.PubSub.ProjectID = GetEnvOrDefaultAsString("PROJECT_ID", cfg.PubSub.ProjectID)
	cfg.PubSub.SmsTopic = GetEnvOrDefaultAsString("PUBSUB_SMS_TOPIC", cfg.PubSub.SmsTopic)

	// GCS and SFTP
	cfg.GCS.BucketName = GetEnvOrDefaultAsString("GCS_BUCKET_NAME", cfg.GCS.BucketName)
	cfg.GCS.FolderName = GetEnvOrDefaultAsString("GCS_FOLDER_NAME", orString(cfg.GCS.FolderName, "settlements"))
	cfg.GCS.CredentialsFile = GetEnvOrDefaultAsString("GCS_CREDENTIALS_FILE", cfg.GCS.CredentialsFile)
	cfg.SFTP.Host = GetEnvOrDefaultAsString("SFTP_HOST", cfg.SFTP.Host)
	cfg.SFTP.Port = GetEnvOrDefaultAsInt("SFTP_PORT", orInt(cfg.SFTP.Port, 22))
	cfg.SFTP.User = GetEnvOrDefaultAsString("SFTP_USER", cfg.SFTP.User)
	cfg.SFTP.Password = GetEnvOrDefaultAsString("SFTP_PASSWORD", cfg.SFTP.Password)
	cfg.SFTP.LedgerDir = GetEnvOrDefaultAsString("SFTP_LEDGER_DIR", orString(cfg.SFTP.LedgerDir, "/outbound/ledger"))

	// USSD session
	cfg.Session.OTPLength = GetEnvOrDefaultAsInt("SESSION_OTP_LENGTH", orInt(cfg.Session.OTPLength, 6))
	cfg.Session.OTPTTLSeconds = GetEnvOrDefaultAsInt("SESSION_OTP_TTL_SECONDS", orInt(cfg.Session.OTPTTLSeconds, 300))
	cfg.Session.OTPMaxAttempts = GetEnvOrDefaultAsInt("SESSION_OTP_MAX_ATTEMPTS", orInt(cfg.Session.OTPMaxAttempts, 3))
	cfg.Session.OTPHashCost = GetEnvOrDefaultAsInt("SESSION_OTP_HASH_COST", orInt(cfg.Session.OTPHashCost, 10))
	cfg.Session.ReplyCacheSeconds = GetEnvOrDefaultAsInt("SESSION_REPLY_CACHE_SECONDS",
		orInt(cfg.Session.ReplyCacheSeconds, 30))
	cfg.Session.HandlerTimeoutSecs = GetEnvOrDefaultAsInt("SESSION_HANDLER_TIMEOUT_SECONDS",
		orInt(cfg.Session.HandlerTimeoutSecs, 20))
	cfg.Session.DuplicateWindowSecs = GetEnvOrDefaultAsInt("SESSION_DUPLICATE_WINDOW_SECONDS",
		orInt(cfg.Session.DuplicateWindowSecs, 5))

	// loans and commissions
	cfg.Loan.MinAmount = GetEnvOrDefaultAsFloat("LOAN_MIN_AMOUNT", orFloat(cfg.Loan.MinAmount, 500))
	cfg.Loan.ReferenceNodeID = int64(GetEnvOrDefaultAsInt("LOAN_REFERENCE_NODE_ID", int(cfg.Loan.ReferenceNodeID)))
	cfg.Loan.Channel = GetEnvOrDefaultAsString("LOAN_CHANNEL", orString(cfg.Loan.Channel, "USSD"))
	cfg.Commission.BankRate = GetEnvOrDefaultAsFloat("COMMISSION_BANK_RATE", orFloat(cfg.Commission.BankRate, 0.08))
	cfg.Commission.AggregatorRate = GetEnvOrDefaultAsFloat("COMMISSION_AGGREGATOR_RATE",
		orFloat(cfg.Commission.AggregatorRate, 0.03))
	cfg.Commission.WalletRate = GetEnvOrDefaultAsFloat("COMMISSION_WALLET_RATE", orFloat(cfg.Commission.WalletRate, 0.03))

	// cross validation
	cv := &cfg.CrossValidation
	cv.ApprovalThreshold = orFloat(cv.ApprovalThreshold, 70)
	cv.LowCreditScore = orInt(cv.LowCreditScore, 500)
	cv.MidCreditScore = orInt(cv.MidCreditScore, 650)
	cv.LowBandFactor = orFloat(cv.LowBandFactor, 0.5)
	cv.MidBandFactor = orFloat(cv.MidBandFactor, 0.7)
	cv.ActiveDebtFactor = orFloat(cv.ActiveDebtFactor, 0.8)
	cv.MinViableAmount = orFloat(cv.MinViableAmount, cfg.Loan.MinAmount)

	// settlement and wallet
	cfg.Settlement.LockTTLSeconds = GetEnvOrDefaultAsInt("SETTLEMENT_LOCK_TTL_SECONDS",
		orInt(cfg.Settlement.LockTTLSeconds, 120))
	cfg.Settlement.PayjaAccount = GetEnvOrDefaultAsString("SETTLEMENT_PAYJA_ACCOUNT", cfg.Settlement.PayjaAccount)
	cfg.Settlement.EmolaAccount = GetEnvOrDefaultAsString("SETTLEMENT_EMOLA_ACCOUNT", cfg.Settlement.EmolaAccount)
	cfg.Wallet.LookupURL = GetEnvOrDefaultAsString("WALLET_LOOKUP_URL", cfg.Wallet.LookupURL)
	cfg.Wallet.CreditURL = GetEnvOrDefaultAsString("WALLET_CREDIT_URL", cfg.Wallet.CreditURL)
	cfg.Wallet.APIKey = GetEnvOrDefaultAsString("WALLET_API_KEY", cfg.Wallet.APIKey)
	cfg.Wallet.HTTPTimeoutSeconds = GetEnvOrDefaultAsInt("WALLET_HTTP_TIMEOUT_SECONDS",
		orInt(cfg.Wallet.HTTPTimeoutSeconds, 10))

	// retry policy shared by bank and wallet adapters
	cfg.Retry.MaxAttempts = GetEnvOrDefaultAsInt("RETRY_MAX_ATTEMPTS", orInt(cfg.Retry.MaxAttempts, 3))
	cfg.Retry.InitialBackoffMs = GetEnvOrDefaultAsInt("RETRY_INITIAL_BACKOFF_MS", orInt(cfg.Retry.InitialBackoffMs, 200))
	cfg.Retry.MaxBackoffMs = GetEnvOrDefaultAsInt("RETRY_MAX_BACKOFF_MS", orInt(cfg.Retry.MaxBackoffMs, 2000))

	cfg.OverdueSweep.IntervalMinutes = GetEnvOrDefaultAsInt("OVERDUE_SWEEP_INTERVAL_MINUTES",
		orInt(cfg.OverdueSweep.IntervalMinutes, 60))
	cfg.WorkerPool.Size = GetEnvOrDefaultAsInt("WORKER_POOL_SIZE", orInt(cfg.WorkerPool.Size, 8))

	return cfg
}

// LoadFromConfigFilePath loads and parses config file into AppConfig
func LoadFromConfigFilePath(configPath string) (*AppConfig, error) {

	// #nosec G304: path comes from deployment config
	data, err := os.ReadFile(configPath)
	if err != nil {
		logger.Error("Failed to read config file", err, zap.String("path", configPath))
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("Failed to unmarshal config", err)
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	defaultCfg := assignDefaultConfigValues(&cfg)

	if err := validateConfig(defaultCfg); err != nil {
		logger.Error("Config validation failed", err)
		return nil, err
	}

	logger.Info("Configuration loaded successfully", zap.String("path", configPath))

	return defaultCfg, nil
}

func validateConfig(cfg *AppConfig) error {
	mongo := cfg.Mongo
	if mongo.MinPoolSize > mongo.MaxPoolSize {
		return fmt.Errorf("mongo.min_pool_size (%d) must not exceed mongo.max_pool_size (%d)",
			mongo.MinPoolSize, mongo.MaxPoolSize)
	}
	if mongo.MaxPoolSize > 100 {
		return fmt.Errorf("mongo.max_pool_size must be at most 100, got %d", mongo.MaxPoolSize)
	}

	c := cfg.Commission
	for name, rate := range map[string]float64{
		"commission.bank_rate":       c.BankRate,
		"commission.aggregator_rate": c.AggregatorRate,
		"commission.wallet_rate":     c.WalletRate,
	} {
		if rate < 0 || rate >= 0.5 {
			return fmt.Errorf("%s must be in [0, 0.5), got %v", name, rate)
		}
	}
	if c.BankRate+c.AggregatorRate+c.WalletRate >= 1 {
		return errors.New("sum of commission rates must be below 1")
	}

	cv := cfg.CrossValidation
	if cv.ApprovalThreshold <= 0 || cv.ApprovalThreshold > 100 {
		return fmt.Errorf("cross_validation.approval_threshold must be in (0, 100], got %v", cv.ApprovalThreshold)
	}
	if cv.LowCreditScore > cv.MidCreditScore {
		return fmt.Errorf("cross_validation.low_credit_score (%d) must not exceed mid_credit_score (%d)",
			cv.LowCreditScore, cv.MidCreditScore)
	}

	s := cfg.Session
	if s.OTPLength < 4 || s.OTPLength > 8 {
		return fmt.Errorf("session.otp_length must be between 4 and 8, got %d", s.OTPLength)
	}
	if s.OTPMaxAttempts < 1 || s.OTPMaxAttempts > 5 {
		return fmt.Errorf("session.otp_max_attempts must be between 1 and 5, got %d", s.OTPMaxAttempts)
	}
	if s.OTPTTLSeconds < 60 || s.OTPTTLSeconds > 900 {
		return fmt.Errorf("session.otp_ttl_seconds must be between 60 and 900, got %d", s.OTPTTLSeconds)
	}
	if s.DuplicateWindowSecs < 0 || s.DuplicateWindowSecs > 30 {
		return fmt.Errorf("session.duplicate_window_seconds must be between 0 and 30, got %d", s.DuplicateWindowSecs)
	}

	r := cfg.Retry
	if r.MaxAttempts < 1 || r.MaxAttempts > 10 {
		return fmt.Errorf("retry.max_attempts must be between 1 and 10, got %d", r.MaxAttempts)
	}
	if r.InitialBackoffMs > r.MaxBackoffMs {
		return fmt.Errorf("retry.initial_backoff_ms (%d) must not exceed retry.max_backoff_ms (%d)",
			r.InitialBackoffMs, r.MaxBackoffMs)
	}

	if cfg.Loan.MinAmount <= 0 {
		return fmt.Errorf("loan.min_amount must be positive, got %v", cfg.Loan.MinAmount)
	}
	if cfg.Loan.ReferenceNodeID < 0 || cfg.Loan.ReferenceNodeID > 1023 {
		return fmt.Errorf("loan.reference_node_id must be between 0 and 1023, got %d", cfg.Loan.ReferenceNodeID)
	}

	return nil
}

func (s SessionConfig) OTPTTL() time.Duration {
	return time.Duration(s.OTPTTLSeconds) * time.Second
}

func (s SessionConfig) ReplyCacheTTL() time.Duration {
	return time.Duration(s.ReplyCacheSeconds) * time.Second
}

func (s SessionConfig) DuplicateWindow() time.Duration {
	return time.Duration(s.DuplicateWindowSecs) * time.Second
}

func (s SessionConfig) HandlerTimeout() time.Duration {
	return time.Duration(s.HandlerTimeoutSecs) * time.Second
}

func (s SettlementConfig) LockTTL() time.Duration {
	return time.Duration(s.LockTTLSeconds) * time.Second
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (s ServiceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (o OverdueSweepConfig) Interval() time.Duration {
	return time.Duration(o.IntervalMinutes) * time.Minute
}

// GetEnvOrDefaultAsInt returns the value of the given env variable
// as an int or the default value if not set or invalid.
func GetEnvOrDefaultAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return int(value)
}

// GetEnvOrDefaultAsUint64 returns the value of the env variable
// as uint64 or the default value if not set or invalid.
func GetEnvOrDefaultAsUint64(key string, defaultValue uint64) uint64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvOrDefaultAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvOrDefaultAsString(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return defaultVal
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LoadFromConfig loads the optional .env file and then the YAML config at CONFIG_PATH.
func LoadFromConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	configPath := GetEnvOrDefaultAsString("CONFIG_PATH", "configs/config.yaml")

	cfg, err := LoadFromConfigFilePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	return cfg, nil
}
