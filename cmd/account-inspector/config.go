package main

import (
	"os"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/metaplex-go/pkg/metrics"
	"github.com/code-payments/metaplex-go/pkg/solana"
)

// Config is the inspector configuration, read from an optional config file
// and the environment.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// RPCEndpoint is an endpoint URL or a cluster name: devnet, testnet or
	// mainnet-beta.
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// Commitment is one of processed, confirmed or finalized.
	Commitment string `mapstructure:"commitment"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = Config{
	LogLevel: "info",

	AppName: "account-inspector",

	RPCEndpoint: "mainnet-beta",
	Commitment:  "confirmed",
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("rpc_endpoint", "RPC_ENDPOINT")
	_ = viper.BindEnv("commitment", "COMMITMENT")

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}

func loadConfig(path string) (Config, error) {
	// viper.ReadInConfig only returns ConfigFileNotFoundError when searching
	// for a default file, so a missing explicit file is checked here.
	if _, err := os.Stat(path); err == nil {
		viper.SetConfigFile(path)
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return Config{}, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.RPCEndpoint) == 0 {
		return Config{}, errors.New("must specify an rpc endpoint")
	}
	config.RPCEndpoint = solana.ResolveEndpoint(config.RPCEndpoint)

	return config, nil
}

func newMetricsProvider(config Config) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

func configureLogger(config Config, metricsProvider *newrelic.Application) {
	logrus.SetFormatter(metrics.NewNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	// Results are written to stdout.
	logrus.SetOutput(os.Stderr)
}
