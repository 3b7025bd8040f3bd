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

package report

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/runner"
)

// Document is the machine readable form of a run.
type Document struct {
	RunID       string     `yaml:"runId"`
	BaseURL     string     `yaml:"baseUrl"`
	StartedAt   time.Time  `yaml:"startedAt"`
	Duration    string     `yaml:"duration"`
	TestsRun    int        `yaml:"testsRun"`
	TestsPassed int        `yaml:"testsPassed"`
	SuccessRate float64    `yaml:"successRate"`
	Threshold   float64    `yaml:"threshold"`
	AuthFailed  bool       `yaml:"authFailed,omitempty"`
	Succeeded   bool       `yaml:"succeeded"`
	Scenarios   []Scenario `yaml:"scenarios"`
}

type Scenario struct {
	Name               string `yaml:"name"`
	Section            string `yaml:"section"`
	Passed             bool   `yaml:"passed"`
	PreconditionFailed bool   `yaml:"preconditionFailed,omitempty"`
	Checks             int    `yaml:"checks"`
	Duration           string `yaml:"duration"`
}

// NewDocument converts a summary.
func NewDocument(summary *runner.Summary) *Document {
	doc := &Document{
		RunID:       summary.RunID,
		BaseURL:     summary.BaseURL,
		StartedAt:   summary.StartedAt.UTC(),
		Duration:    summary.Duration.String(),
		TestsRun:    summary.TestsRun,
		TestsPassed: summary.TestsPassed,
		SuccessRate: summary.SuccessRate,
		Threshold:   summary.Threshold,
		AuthFailed:  summary.AuthFailed,
		Succeeded:   summary.Succeeded(),
		Scenarios:   make([]Scenario, 0, len(summary.Scenarios)),
	}

	for _, s := range summary.Scenarios {
		doc.Scenarios = append(doc.Scenarios, Scenario{
			Name:               s.Name,
			Section:            s.Section,
			Passed:             s.Passed,
			PreconditionFailed: s.PreconditionFailed,
			Checks:             s.Checks,
			Duration:           s.Duration.String(),
		})
	}

	return doc
}

// WriteYAML writes the report of a run to path, replacing any existing file.
func WriteYAML(path string, summary *runner.Summary) error {
	data, err := yaml.Marshal(NewDocument(summary))
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}

	return nil
}
