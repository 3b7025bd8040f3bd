/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/api"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/constants"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/exitcodes"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/metrics"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/report"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/runner"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const metricsPushTimeout = 10 * time.Second

func newZapLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	if debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return config.Build()
}

func main() {
	os.Exit(run(cr.SetupSignalHandler(), os.Args[1:], os.Stdout))
}

// run executes one run with the given arguments, writing progress and the
// summary to out, and returns the process exit code.
func run(ctx context.Context, args []string, out io.Writer) int {
	flags := pflag.NewFlagSet(constants.Application, pflag.ContinueOnError)

	config := api.LoadTestConfig()
	config.AddFlags(flags)

	showVersion := flags.Bool("version", false, "Print the version and exit.")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitcodes.Success
		}

		return exitcodes.RuntimeErr
	}

	if *showVersion {
		fmt.Fprintln(out, constants.VersionString())
		return exitcodes.Success
	}

	zapLogger, err := newZapLogger(config.DebugLogging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitcodes.RuntimeErr
	}

	defer func() {
		_ = zapLogger.Sync()
	}()

	log.SetLogger(zapr.NewLogger(zapLogger))

	logger := log.Log.WithName("init")
	logger.Info("service starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision)

	if err := config.Validate(); err != nil {
		logger.Error(err, "configuration rejected")
		return exitcodes.RuntimeErr
	}

	ctx = log.IntoContext(ctx, log.Log.WithName("runner"))

	runMetrics := metrics.New()

	client := api.NewAPIClientWithConfig(config, api.NewSession(config.BaseURL), out, runMetrics)

	summary := runner.New(config, client, out).Run(ctx)

	if !summary.AuthFailed {
		report.PrintSummary(out, summary)
	}

	runMetrics.RecordRun(summary.TestsRun, summary.TestsPassed, summary.SuccessRate, summary.Succeeded(), time.Now())

	if config.ReportFile != "" {
		if err := report.WriteYAML(config.ReportFile, summary); err != nil {
			logger.Error(err, "report not written")
		}
	}

	if config.MetricsPushURL != "" {
		// Push even when interrupted, the partial run is still worth recording.
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
		defer cancel()

		if err := runMetrics.Push(pushCtx, config.MetricsPushURL, config.MetricsJob, summary.RunID); err != nil {
			logger.Error(err, "metrics not pushed")
		}
	}

	return summary.ExitCode()
}
