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

package suites

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive
	. "github.com/onsi/gomega"    //nolint:revive

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/api"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/metrics"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/runner"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/testing/fakeserver"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

var (
	ctx     context.Context
	config  *api.TestConfig
	backend *fakeserver.Server
	server  *httptest.Server
	output  *bytes.Buffer
	stats   *metrics.Metrics
)

// startBackend serves a fresh issue tracker for the current spec.
func startBackend(options fakeserver.Options) {
	backend = fakeserver.New(options)
	server = httptest.NewServer(backend)
	DeferCleanup(server.Close)

	config = &api.TestConfig{
		BaseURL:          server.URL + "/api",
		DemoEmail:        fakeserver.DemoEmail,
		DemoPassword:     fakeserver.DemoPassword,
		RegisterPassword: "TestPass123!",
		RegisterName:     "Test User",
		PassThreshold:    api.DefaultPassThreshold,
		LogRequests:      true,
	}
}

// runAll executes a complete run against the current backend.
func runAll() *runner.Summary {
	client := api.NewAPIClientWithConfig(config, api.NewSession(config.BaseURL), output, stats)

	return runner.New(config, client, output).Run(ctx)
}

var _ = BeforeEach(func() {
	ctx = log.IntoContext(context.Background(), GinkgoLogr)
	output = &bytes.Buffer{}
	stats = metrics.New()

	DeferCleanup(func() {
		GinkgoWriter.Print(output.String())
	})
})

func TestSuites(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Issue Tracker API Suites")
}
