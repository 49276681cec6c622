package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", "", "optional path to configuration file")
	amount := flag.String("amount", "", "mortgage amount")
	term := flag.String("term", "", "mortgage term in years")
	rate := flag.String("rate", "", "annual interest rate in percent")
	mortgageType := flag.String("type", "", "mortgage type: repayment, interest")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf := &config.Configuration{}
	if *configLocation != "" {
		loaded, err := config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			os.Exit(1)
		}
		conf = loaded
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

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

	values := conf.Merge(validation.Values{
		Amount: *amount,
		Term:   *term,
		Rate:   *rate,
		Type:   *mortgageType,
	})

	result, err := calculate(logger, values)
	if err != nil {
		var inputErr *validation.InputError
		if errors.As(err, &inputErr) {
			for _, field := range validation.Fields {
				if msg, ok := inputErr.Fields[field]; ok {
					fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
				}
			}
		}
		logger.Fatal("failed to calculate repayment",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(result)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	case constants.OutputFormatJSON:
		out, err := output.JSONString(result)
		if err != nil {
			logger.Fatal("failed to encode result",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		fmt.Print(out)
	}
}

// calculate runs the same required / parse / calculate pipeline as the form.
func calculate(logger *zap.Logger, values validation.Values) (mortgage.Result, error) {
	if err := validation.RequireAll(values); err != nil {
		return mortgage.Result{}, err
	}
	inputs, err := validation.ParseInputs(values)
	if err != nil {
		return mortgage.Result{}, err
	}
	return mortgage.NewCalculator(logger).Calculate(inputs)
}
