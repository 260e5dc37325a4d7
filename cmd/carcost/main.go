package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iwvelando/carcost/internal/comparison"
	"github.com/iwvelando/carcost/internal/config"
	"github.com/iwvelando/carcost/internal/logging"
	"github.com/iwvelando/carcost/internal/optimizer"
	"github.com/iwvelando/carcost/internal/state"
	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/output"
	"github.com/iwvelando/carcost/pkg/tax"
	"github.com/iwvelando/carcost/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, xlsx, pdf")
	outputFileFlag := flag.String("output-file", "", "write output to this file instead of stdout")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	optimize := flag.Bool("optimize", false, "optimize the down payment of each car's active scenario")
	share := flag.Bool("share", false, "print a share token for the configuration and exit")
	province := flag.String("province", "", "province override, e.g. ON or BC")
	cashOnHand := flag.String("cash", "", "cash on hand override")
	investmentReturn := flag.String("return", "", "annual investment return override, in percent")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := applyOverrides(conf, *province, *cashOnHand, *investmentReturn); err != nil {
		logger.Fatal("invalid command line override",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *share {
		token, err := state.EncodeShareToken(conf)
		if err != nil {
			logger.Fatal("failed to encode share token",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		fmt.Println(token)
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	outputFile := conf.Output.File
	if *outputFileFlag != "" {
		outputFile = *outputFileFlag
	}
	if outputFile == "" && validation.IsBinaryFormat(outputFormat) {
		logger.Fatal(fmt.Sprintf("output format %s needs an output file", outputFormat),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var optimizationResult *optimizer.Result
	if *optimize {
		runner, err := optimizer.NewRunner(logger, conf)
		if err != nil {
			logger.Fatal("failed to initialize optimizer",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		optimizationResult, err = runner.Run()
		if err != nil {
			logger.Fatal("optimizer execution failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	// Evaluate every car under every financing scenario.
	rows, err := comparison.GetComparison(logger, *conf)
	if err != nil {
		logger.Fatal("failed to compare cars",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if optimizationResult != nil {
		optimizationResult.Apply(rows)
	}

	// Handle output.
	var w io.Writer = os.Stdout
	if outputFile != "" {
		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				logger.Fatal(fmt.Sprintf("failed to create output directory %s", dir),
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}
		file, err := os.Create(outputFile)
		if err != nil {
			logger.Fatal(fmt.Sprintf("failed to create output file %s", outputFile),
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer func() {
			if err := file.Close(); err != nil {
				logger.Error("failed to close output file",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}()
		w = file
	}

	if err := output.Write(w, outputFormat, rows); err != nil {
		logger.Error("failed to write output",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
			zap.Error(err),
		)
		return
	}

	if outputFile != "" {
		logger.Info(fmt.Sprintf("wrote %s output to %s", outputFormat, outputFile),
			zap.String("op", "main"),
		)
	}
}

// applyOverrides replaces settings given on the command line. Numbers may
// carry trailing text and are raised to zero when negative.
func applyOverrides(conf *config.Configuration, province, cashOnHand, investmentReturn string) error {
	if province != "" {
		code, err := tax.ParseProvince(province)
		if err != nil {
			return err
		}
		conf.Settings.Province = string(code)
	}
	if cashOnHand != "" {
		value, ok := validation.ParseNumericInput(cashOnHand, 0)
		if !ok {
			return fmt.Errorf("cash on hand %q is not a number", cashOnHand)
		}
		conf.Settings.CashOnHand = value
	}
	if investmentReturn != "" {
		value, ok := validation.ParseNumericInput(investmentReturn, 0)
		if !ok {
			return fmt.Errorf("investment return %q is not a number", investmentReturn)
		}
		conf.Settings.InvestmentReturn = value
	}
	return nil
}
