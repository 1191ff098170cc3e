package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/corray333/backend-labs/meatshop/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MustInit loads .env when present, then config.yaml from /etc/meatshop or the
// working directory. MEATSHOP_* environment variables override file values,
// e.g. MEATSHOP_SERVER_HTTP_PORT for server.http.port.
func MustInit(configFile string) {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	setDefaults()

	viper.SetEnvPrefix("MEATSHOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/meatshop")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.elapsed_interval_ms", 1000)
	viper.SetDefault("postgres.migrations_path", "./migrations")
	viper.SetDefault("rabbitmq.changefeed.exchange", "meatshop.orders")
	viper.SetDefault("rabbitmq.outbox.poll_interval_seconds", 10)
	viper.SetDefault("rabbitmq.outbox.batch_size", 100)
	viper.SetDefault("redis.addr", "redis:6379")
	viper.SetDefault("redis.zone_ttl_seconds", 300)
	viper.SetDefault("ticket.shop_name", "CARNES RH")
	viper.SetDefault("tracing.enabled", false)
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
