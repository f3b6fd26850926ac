package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var baseValidConfig = AppConfig{
	Server:  ServerConfig{Port: 8080},
	Service: ServiceConfig{Name: "payja-lending"},
	Mongo: MongoConfig{
		URI:             "cluster0.example.mongodb.net",
		DBName:          "payja",
		MinPoolSize:     5,
		MaxPoolSize:     20,
		MaxConnIdleTime: 25 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	},
	Redis: RedisConfig{
		Addr: "localhost:6379",
		DB:   1,
	},
	Kafka: KafkaConfig{
		Server:          "localhost:9092",
		LoanEventsTopic: "payja.loan.events",
		ClientID:        "payja",
	},
	PubSub: PubSubConfig{ProjectID: "payja-prod", SmsTopic: "sms-notifications"},
	Session: SessionConfig{
		OTPLength:      6,
		OTPTTLSeconds:  300,
		OTPMaxAttempts: 3,
	},
	Loan:       LoanConfig{MinAmount: 500, ReferenceNodeID: 7},
	Commission: CommissionConfig{BankRate: 0.08, AggregatorRate: 0.03, WalletRate: 0.03},
	Retry:      RetryConfig{MaxAttempts: 3, InitialBackoffMs: 100, MaxBackoffMs: 1000},
}

func writeTempConfig(t *testing.T, cfg AppConfig) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	tmp := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmp, data, 0o644))
	return tmp
}

func validDefaults() AppConfig {
	c := baseValidConfig
	return *assignDefaultConfigValues(&c)
}

func TestAssignDefaultConfigValues(t *testing.T) {
	c := AppConfig{}
	cfg := assignDefaultConfigValues(&c)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.LogLevel)
	assert.Equal(t, 6, cfg.Session.OTPLength)
	assert.Equal(t, 3, cfg.Session.OTPMaxAttempts)
	assert.Equal(t, 300*time.Second, cfg.Session.OTPTTL())
	assert.Equal(t, 5*time.Second, cfg.Session.DuplicateWindow())
	assert.Equal(t, 0.08, cfg.Commission.BankRate)
	assert.Equal(t, 0.03, cfg.Commission.AggregatorRate)
	assert.Equal(t, 0.03, cfg.Commission.WalletRate)
	assert.Equal(t, 70.0, cfg.CrossValidation.ApprovalThreshold)
	assert.Equal(t, 500.0, cfg.CrossValidation.MinViableAmount)
	assert.Equal(t, "USSD", cfg.Loan.Channel)
	assert.Equal(t, 30*time.Minute, cfg.Mongo.MaxConnIdleTime)
}

func TestAssignDefaultConfigValuesEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("COMMISSION_BANK_RATE", "0.1")
	t.Setenv("SESSION_OTP_MAX_ATTEMPTS", "4")

	c := baseValidConfig
	cfg := assignDefaultConfigValues(&c)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.1, cfg.Commission.BankRate)
	assert.Equal(t, 4, cfg.Session.OTPMaxAttempts)
}

func TestValidateConfigErrors(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		c := validDefaults()
		assert.NoError(t, validateConfig(&c))
	})

	t.Run("min pool above max pool", func(t *testing.T) {
		c := validDefaults()
		c.Mongo.MinPoolSize = 30
		assert.Error(t, validateConfig(&c))
	})

	t.Run("commission rate out of range", func(t *testing.T) {
		c := validDefaults()
		c.Commission.BankRate = 0.6
		assert.Error(t, validateConfig(&c))
	})

	t.Run("negative commission rate", func(t *testing.T) {
		c := validDefaults()
		c.Commission.WalletRate = -0.01
		assert.Error(t, validateConfig(&c))
	})

	t.Run("approval threshold above 100", func(t *testing.T) {
		c := validDefaults()
		c.CrossValidation.ApprovalThreshold = 120
		assert.Error(t, validateConfig(&c))
	})

	t.Run("credit score bands inverted", func(t *testing.T) {
		c := validDefaults()
		c.CrossValidation.LowCreditScore = 700
		assert.Error(t, validateConfig(&c))
	})

	t.Run("otp length too short", func(t *testing.T) {
		c := validDefaults()
		c.Session.OTPLength = 2
		assert.Error(t, validateConfig(&c))
	})

	t.Run("otp attempts too many", func(t *testing.T) {
		c := validDefaults()
		c.Session.OTPMaxAttempts = 9
		assert.Error(t, validateConfig(&c))
	})

	t.Run("duplicate window too long", func(t *testing.T) {
		c := validDefaults()
		c.Session.DuplicateWindowSecs = 120
		assert.Error(t, validateConfig(&c))
	})

	t.Run("retry backoff inverted", func(t *testing.T) {
		c := validDefaults()
		c.Retry.InitialBackoffMs = 5000
		assert.Error(t, validateConfig(&c))
	})

	t.Run("reference node out of range", func(t *testing.T) {
		c := validDefaults()
		c.Loan.ReferenceNodeID = 2048
		assert.Error(t, validateConfig(&c))
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("INT_KEY", "42")
	assert.Equal(t, 42, GetEnvOrDefaultAsInt("INT_KEY", 5))

	t.Setenv("INT_KEY", "invalid")
	assert.Equal(t, 5, GetEnvOrDefaultAsInt("INT_KEY", 5))

	t.Setenv("FLOAT_KEY", "0.25")
	assert.Equal(t, 0.25, GetEnvOrDefaultAsFloat("FLOAT_KEY", 1))

	t.Setenv("UINT_KEY", "-1")
	assert.Equal(t, uint64(9), GetEnvOrDefaultAsUint64("UINT_KEY", 9))

	t.Setenv("STR_KEY", "   ")
	assert.Equal(t, "fallback", GetEnvOrDefaultAsString("STR_KEY", "fallback"))
}

func TestLoadFromConfig(t *testing.T) {
	t.Run("valid config from env", func(t *testing.T) {
		path := writeTempConfig(t, baseValidConfig)
		t.Setenv("CONFIG_PATH", path)
		cfg, err := LoadFromConfig()
		require.NoError(t, err)
		assert.Equal(t, "payja", cfg.Mongo.DBName)
		assert.Equal(t, int64(7), cfg.Loan.ReferenceNodeID)
	})

	t.Run("nonexistent config file", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "/nonexistent/path/config.yaml")
		_, err := LoadFromConfig()
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		tmp := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(tmp, []byte("server: [unclosed"), 0o644))
		_, err := LoadFromConfigFilePath(tmp)
		assert.Error(t, err)
	})
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := LoadFromConfigFilePath("../../../configs/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "payja-lending", cfg.Service.Name)
	assert.Equal(t, "Africa/Maputo", cfg.Service.Location().String())
	assert.True(t, cfg.OverdueSweep.Enabled)
	assert.Equal(t, 0.08, cfg.Commission.BankRate)
	assert.Equal(t, "/outbound/ledger", cfg.SFTP.LedgerDir)
}
