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
	"time"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/exitcodes"
)

// Sections group scenarios in the progress output.
const (
	SectionAuthentication  = "AUTHENTICATION TESTS"
	SectionIssueManagement = "ISSUE MANAGEMENT TESTS"
	SectionCleanup         = "CLEANUP"
)

// ScenarioResult captures the outcome of one scenario.
type ScenarioResult struct {
	Name    string
	Section string
	Passed  bool
	// PreconditionFailed is set when the scenario failed without issuing a
	// request, because an earlier scenario did not produce its input.
	PreconditionFailed bool
	// Checks is the number of requests the scenario issued.
	Checks   int
	Duration time.Duration
}

// Summary is the outcome of a run.
type Summary struct {
	RunID       string
	BaseURL     string
	StartedAt   time.Time
	Duration    time.Duration
	TestsRun    int
	TestsPassed int
	// SuccessRate is the percentage of passed checks.
	SuccessRate float64
	// Threshold is the success rate required for the run to succeed.
	Threshold float64
	// AuthFailed is set when neither login nor registration succeeded, in
	// which case no issue scenario ran.
	AuthFailed bool
	Scenarios  []ScenarioResult
}

// Succeeded reports whether the run reached its pass threshold.
func (s *Summary) Succeeded() bool {
	return !s.AuthFailed && s.SuccessRate >= s.Threshold
}

// ExitCode maps the run outcome to a process exit code.
func (s *Summary) ExitCode() int {
	if s.Succeeded() {
		return exitcodes.Success
	}

	return exitcodes.TestFailure
}
