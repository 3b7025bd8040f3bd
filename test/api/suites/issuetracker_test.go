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
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive
	. "github.com/onsi/gomega"    //nolint:revive
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/exitcodes"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/report"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/runner"
	"github.com/unikorn-cloud/issuetracker-apitest/pkg/testing/fakeserver"
)

func scenario(summary *runner.Summary, name string) runner.ScenarioResult {
	for _, s := range summary.Scenarios {
		if s.Name == name {
			return s
		}
	}

	Fail("scenario " + name + " was not recorded")

	return runner.ScenarioResult{}
}

var _ = Describe("Issue Tracker Run", func() {
	Context("When the backend is healthy", func() {
		BeforeEach(func() {
			startBackend(fakeserver.Options{})
		})

		Describe("Given the demo account exists", func() {
			It("should pass every check and clean up", func() {
				summary := runAll()

				Expect(summary.AuthFailed).To(BeFalse())
				Expect(summary.TestsRun).To(Equal(12))
				Expect(summary.TestsPassed).To(Equal(12))
				Expect(summary.ExitCode()).To(Equal(exitcodes.Success))

				Expect(backend.Requests(fakeserver.RouteRegister)).To(BeZero())
				Expect(backend.Requests(fakeserver.RouteDeleteIssue)).To(Equal(1))
				Expect(backend.Requests(fakeserver.RouteListIssues)).To(Equal(4))
			})

			It("should report the final results", func() {
				summary := runAll()
				report.PrintFinalResults(output, summary)

				Expect(output.String()).To(ContainSubstring("Tests passed: 12/12\n"))
				Expect(output.String()).To(ContainSubstring("Success rate: 100.0%\n"))
				Expect(output.String()).To(ContainSubstring("🎉 Backend API tests mostly successful!\n"))
			})

			It("should record metrics for every check", func() {
				summary := runAll()
				stats.RecordRun(summary.TestsRun, summary.TestsPassed, summary.SuccessRate, summary.Succeeded(), summary.StartedAt)

				count, err := testutil.GatherAndCount(stats.Registry(), "issuetracker_apitest_checks_total")
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(12))
			})

			It("should write a YAML report", func() {
				summary := runAll()
				path := filepath.Join(GinkgoT().TempDir(), "report.yaml")

				Expect(report.WriteYAML(path, summary)).To(Succeed())

				data, err := os.ReadFile(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(ContainSubstring("succeeded: true"))
				Expect(string(data)).To(ContainSubstring("name: Delete Issue"))
			})
		})
	})

	Context("When the demo login is rejected", func() {
		BeforeEach(func() {
			startBackend(fakeserver.Options{
				Failures: map[string]int{fakeserver.RouteLogin: http.StatusUnauthorized},
			})
		})

		It("should register a new user and continue", func() {
			summary := runAll()

			Expect(summary.AuthFailed).To(BeFalse())
			Expect(summary.TestsRun).To(Equal(13))
			Expect(summary.TestsPassed).To(Equal(12))
			Expect(summary.Succeeded()).To(BeTrue())
			Expect(scenario(summary, "User Login (Demo)").Passed).To(BeFalse())
			Expect(scenario(summary, "User Registration").Passed).To(BeTrue())
			Expect(output.String()).To(ContainSubstring("   Registered user: Test User\n"))
		})
	})

	Context("When neither login nor registration succeed", func() {
		BeforeEach(func() {
			startBackend(fakeserver.Options{
				Failures: map[string]int{
					fakeserver.RouteLogin:    http.StatusUnauthorized,
					fakeserver.RouteRegister: http.StatusBadRequest,
				},
			})
		})

		It("should stop before touching any issue", func() {
			summary := runAll()

			Expect(summary.AuthFailed).To(BeTrue())
			Expect(summary.ExitCode()).To(Equal(exitcodes.TestFailure))
			Expect(backend.IssueRequests()).To(BeZero())
			Expect(output.String()).To(ContainSubstring("❌ Authentication failed, stopping tests\n"))
			Expect(output.String()).NotTo(ContainSubstring("FINAL RESULTS"))
		})
	})

	Context("When issue creation fails", func() {
		BeforeEach(func() {
			startBackend(fakeserver.Options{
				Failures: map[string]int{fakeserver.RouteCreateIssue: http.StatusInternalServerError},
			})
		})

		It("should skip issue scenarios without sending requests", func() {
			summary := runAll()

			Expect(summary.TestsRun).To(Equal(7))
			Expect(summary.TestsPassed).To(Equal(6))
			Expect(summary.ExitCode()).To(Equal(exitcodes.Success))

			for _, name := range []string{"Get Single Issue", "Update Issue Status", "Add Solution to Issue", "Get Similar Issues", "Delete Issue"} {
				Expect(scenario(summary, name).PreconditionFailed).To(BeTrue(), name)
			}

			Expect(output.String()).To(ContainSubstring("❌ Failed - Expected 200, got 500\n"))
			Expect(output.String()).To(ContainSubstring(`   Error: {"detail":"injected failure"}`))
		})
	})

	Context("When most issue operations fail", func() {
		BeforeEach(func() {
			startBackend(fakeserver.Options{
				Failures: map[string]int{
					fakeserver.RouteGetIssue:      http.StatusNotFound,
					fakeserver.RouteUpdateIssue:   http.StatusInternalServerError,
					fakeserver.RouteAddSolution:   http.StatusInternalServerError,
					fakeserver.RouteSimilarIssues: http.StatusInternalServerError,
				},
			})
		})

		It("should fall below the pass threshold", func() {
			summary := runAll()
			report.PrintFinalResults(output, summary)

			Expect(summary.TestsRun).To(Equal(12))
			Expect(summary.TestsPassed).To(Equal(8))
			Expect(summary.Succeeded()).To(BeFalse())
			Expect(summary.ExitCode()).To(Equal(exitcodes.TestFailure))
			Expect(output.String()).To(ContainSubstring("Success rate: 66.7%\n"))
			Expect(output.String()).To(ContainSubstring("⚠️  Backend API has significant issues\n"))
		})
	})
})
