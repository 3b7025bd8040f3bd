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

package api_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/api"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestListIssuesEndpoint(t *testing.T) {
	t.Parallel()

	endpoints := api.NewEndpoints()

	tests := []struct {
		name     string
		filter   api.IssueFilter
		expected string
	}{
		{"NoFilter", api.IssueFilter{}, "issues"},
		{"Priority", api.IssueFilter{Priority: "high"}, "issues?priority=high"},
		{"Status", api.IssueFilter{Status: "open"}, "issues?status=open"},
		{"Search", api.IssueFilter{Search: "test"}, "issues?search=test"},
		{"SearchEscaped", api.IssueFilter{Search: "login page"}, "issues?search=login+page"},
		{"Combined", api.IssueFilter{Priority: "low", Status: "closed"}, "issues?priority=low&status=closed"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			endpoint, err := endpoints.ListIssues(test.filter)
			require.NoError(t, err)
			require.Equal(t, test.expected, endpoint)
		})
	}
}

func TestIssueEndpointsEscapeIdentifiers(t *testing.T) {
	t.Parallel()

	endpoints := api.NewEndpoints()

	require.Equal(t, "issues/a%2Fb", endpoints.GetIssue("a/b"))
	require.Equal(t, "issues/42", endpoints.UpdateIssue("42"))
	require.Equal(t, "issues/42", endpoints.DeleteIssue("42"))
	require.Equal(t, "issues/42/solutions", endpoints.AddSolution("42"))
	require.Equal(t, "issues/42/similar", endpoints.SimilarIssues("42"))
	require.Equal(t, "auth/login", endpoints.Login())
	require.Equal(t, "auth/register", endpoints.Register())
	require.Equal(t, "auth/me", endpoints.CurrentUser())
}

func TestPayloadBuilders(t *testing.T) {
	t.Parallel()

	issue := api.NewIssuePayload(testTime).Build()
	require.Equal(t, "Test Issue 092653", issue["title"])
	require.Equal(t, "high", issue["priority"])
	require.Equal(t, "This is a test issue created by automated testing", issue["description"])

	custom := api.NewIssuePayload(testTime).
		WithTitle("Login broken").
		WithDescription("500 on submit").
		WithPriority("").
		Build()
	require.Equal(t, "Login broken", custom["title"])
	require.Equal(t, "500 on submit", custom["description"])
	require.NotContains(t, custom, "priority")

	require.Equal(t, map[string]interface{}{"status": "in-progress"}, api.NewStatusUpdatePayload("in-progress"))
	require.Equal(t, map[string]interface{}{"solution_text": "restart it"}, api.NewSolutionPayload("restart it"))
}

func TestGenerateTestEmailIsUnique(t *testing.T) {
	t.Parallel()

	first := api.GenerateTestEmail(testTime)
	second := api.GenerateTestEmail(testTime)

	require.Regexp(t, regexp.MustCompile(`^test_user_092653_[0-9a-f]{8}@test\.com$`), first)
	require.NotEqual(t, first, second)
}
