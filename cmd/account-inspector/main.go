package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/metaplex-go/pkg/config/env"
	"github.com/code-payments/metaplex-go/pkg/metrics"
	"github.com/code-payments/metaplex-go/pkg/solana"
)

const (
	defaultRPCMaxAttempts = 3
	defaultRPCTimeout     = 30 * time.Second
)

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <command> [args]\n\ncommands:\n%s\n\nflags:\n", os.Args[0], usage())
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	logger := logrus.StandardLogger().WithField("type", "account-inspector")

	config, err := loadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		return err
	}

	commitment, err := solana.ParseCommitment(config.Commitment)
	if err != nil {
		logger.WithError(err).Error("invalid commitment")
		return err
	}

	metricsProvider, err := newMetricsProvider(config)
	if err != nil {
		logger.WithError(err).Error("error connecting to new relic")
		return err
	}
	configureLogger(config, metricsProvider)

	ctx := metrics.WithApplication(context.Background(), metricsProvider)
	if metricsProvider != nil {
		txn := metricsProvider.StartTransaction("inspect")
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}

	rpcTimeout := env.NewDurationConfig("RPC_TIMEOUT", defaultRPCTimeout)
	client := solana.NewWithConfig(
		config.RPCEndpoint,
		&jsonrpc.RPCClientOpts{
			HTTPClient: &http.Client{Timeout: rpcTimeout.Get(ctx)},
		},
		env.NewUint64Config("RPC_MAX_ATTEMPTS", defaultRPCMaxAttempts),
	)

	result, err := newInspector(client, commitment).run(ctx, args)
	recordInspection(ctx, args, err)
	if err != nil {
		if !errors.Is(err, errUsage) {
			logger.WithError(err).Error("inspection failed")
		}
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func recordInspection(ctx context.Context, args []string, err error) {
	if len(args) == 0 {
		return
	}

	metrics.RecordEvent(ctx, "AccountInspection", map[string]interface{}{
		"command": args[0],
		"success": err == nil,
	})
}
