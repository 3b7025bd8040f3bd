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

package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/api"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Runner executes the fixed scenario sequence against one backend.
type Runner struct {
	config    *api.TestConfig
	client    *api.APIClient
	session   *api.Session
	endpoints *api.Endpoints
	out       io.Writer

	// now is the clock used for unique test data and timings.
	now func() time.Time

	section   string
	scenarios []ScenarioResult
}

// New returns a runner driving the given client, progress is written to out.
func New(config *api.TestConfig, client *api.APIClient, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}

	return &Runner{
		config:    config,
		client:    client,
		session:   client.Session(),
		endpoints: api.NewEndpoints(),
		out:       out,
		now:       time.Now,
	}
}

// Scenarios returns the results recorded so far.
func (r *Runner) Scenarios() []ScenarioResult {
	return r.scenarios
}

// Run authenticates and, if that succeeds, walks the issue lifecycle once.
// Scenario failures are recorded and never stop the sequence, apart from
// authentication which every later scenario depends on.
func (r *Runner) Run(ctx context.Context) *Summary {
	log := log.FromContext(ctx)

	startedAt := r.now()
	runID := uuid.NewString()

	log.Info("run starting", "runID", runID, "baseURL", r.session.BaseURL)

	fmt.Fprintln(r.out, "🚀 Starting Issue Tracker API Tests")
	fmt.Fprintln(r.out, strings.Repeat("=", 50))

	r.beginSection("📋", SectionAuthentication)

	if !r.Login(ctx) && !r.Register(ctx) {
		fmt.Fprintln(r.out, "❌ Authentication failed, stopping tests")
		log.Info("authentication failed, run aborted", "runID", runID)

		return r.summarize(runID, startedAt, true)
	}

	r.GetCurrentUser(ctx)

	r.beginSection("📋", SectionIssueManagement)

	r.CreateIssue(ctx)
	r.ListIssues(ctx)
	r.ListIssuesFiltered(ctx)
	r.GetIssue(ctx)
	r.UpdateIssueStatus(ctx)
	r.AddSolution(ctx)
	r.GetSimilarIssues(ctx)

	r.beginSection("🧹", SectionCleanup)

	r.DeleteIssue(ctx)

	summary := r.summarize(runID, startedAt, false)

	log.Info("run finished", "runID", runID, "testsRun", summary.TestsRun, "testsPassed", summary.TestsPassed, "successRate", summary.SuccessRate)

	return summary
}

func (r *Runner) beginSection(icon, name string) {
	r.section = name

	fmt.Fprintf(r.out, "\n%s %s\n", icon, name)
	fmt.Fprintln(r.out, strings.Repeat("-", 30))
}

func (r *Runner) summarize(runID string, startedAt time.Time, authFailed bool) *Summary {
	return &Summary{
		RunID:       runID,
		BaseURL:     r.session.BaseURL,
		StartedAt:   startedAt,
		Duration:    r.now().Sub(startedAt),
		TestsRun:    r.session.TestsRun,
		TestsPassed: r.session.TestsPassed,
		SuccessRate: r.session.SuccessRate(),
		Threshold:   r.config.PassThreshold,
		AuthFailed:  authFailed,
		Scenarios:   r.scenarios,
	}
}

// track runs a scenario and records its outcome.
func (r *Runner) track(name string, scenario func() bool) bool {
	start := r.now()
	before := r.session.TestsRun

	passed := scenario()

	checks := r.session.TestsRun - before

	r.scenarios = append(r.scenarios, ScenarioResult{
		Name:               name,
		Section:            r.section,
		Passed:             passed,
		PreconditionFailed: !passed && checks == 0,
		Checks:             checks,
		Duration:           r.now().Sub(start),
	})

	return passed
}
