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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/unikorn-cloud/issuetracker-apitest/pkg/api"
)

const (
	issueStatusInProgress = "in-progress"
	solutionText          = "This is a test solution for the automated test issue"
)

// Login authenticates with the demo account.
func (r *Runner) Login(ctx context.Context) bool {
	return r.track("User Login (Demo)", func() bool {
		result := r.client.RunTest(ctx, api.Check{
			Name:           "User Login (Demo)",
			Method:         http.MethodPost,
			Endpoint:       r.endpoints.Login(),
			ExpectedStatus: http.StatusOK,
			Body:           api.NewCredentialsPayload(r.config.DemoEmail, r.config.DemoPassword),
		})

		return r.authenticate(result, "Logged in user")
	})
}

// Register creates and authenticates a new user with a unique email.
func (r *Runner) Register(ctx context.Context) bool {
	return r.track("User Registration", func() bool {
		result := r.client.RunTest(ctx, api.Check{
			Name:           "User Registration",
			Method:         http.MethodPost,
			Endpoint:       r.endpoints.Register(),
			ExpectedStatus: http.StatusOK,
			Body:           api.NewRegistrationPayload(api.GenerateTestEmail(r.now()), r.config.RegisterPassword, r.config.RegisterName),
		})

		return r.authenticate(result, "Registered user")
	})
}

// authenticate stores the token and user of a successful auth response.
// A response without a token key does not authenticate the session, the
// value itself is taken as is.
func (r *Runner) authenticate(result api.Result, verb string) bool {
	if !result.Success {
		return false
	}

	rawToken, ok := result.Body["token"]
	if !ok {
		return false
	}

	token := stringValue(rawToken)

	user, _ := result.Body["user"].(map[string]any)

	r.session.Authenticate(token, stringValue(user["id"]))

	fmt.Fprintf(r.out, "   %s: %s\n", verb, stringValue(user["name"]))

	return true
}

// GetCurrentUser checks the token is accepted.
func (r *Runner) GetCurrentUser(ctx context.Context) bool {
	return r.track("Get Current User", func() bool {
		return r.client.RunTest(ctx, api.Check{
			Name:           "Get Current User",
			Method:         http.MethodGet,
			Endpoint:       r.endpoints.CurrentUser(),
			ExpectedStatus: http.StatusOK,
		}).Success
	})
}

// CreateIssue creates the issue the remaining scenarios operate on.
func (r *Runner) CreateIssue(ctx context.Context) bool {
	return r.track("Create Issue", func() bool {
		result := r.client.RunTest(ctx, api.Check{
			Name:           "Create Issue",
			Method:         http.MethodPost,
			Endpoint:       r.endpoints.CreateIssue(),
			ExpectedStatus: http.StatusOK,
			Body:           api.NewIssuePayload(r.now()).Build(),
		})

		if !result.Success {
			return false
		}

		issueID := stringValue(result.Body["id"])
		if issueID == "" {
			return false
		}

		r.session.CreatedIssueID = &issueID

		fmt.Fprintf(r.out, "   Created issue ID: %s\n", issueID)

		return true
	})
}

// ListIssues lists every issue visible to the user.
func (r *Runner) ListIssues(ctx context.Context) bool {
	return r.track("Get All Issues", func() bool {
		endpoint, err := r.endpoints.ListIssues(api.IssueFilter{})
		if err != nil {
			fmt.Fprintf(r.out, "❌ Get All Issues - Error: %v\n", err)
			return false
		}

		result := r.client.RunTest(ctx, api.Check{
			Name:           "Get All Issues",
			Method:         http.MethodGet,
			Endpoint:       endpoint,
			ExpectedStatus: http.StatusOK,
		})

		if result.Success {
			fmt.Fprintf(r.out, "   Found %d issues\n", result.Len())
		}

		return result.Success
	})
}

// ListIssuesFiltered exercises each list filter, all must pass.
func (r *Runner) ListIssuesFiltered(ctx context.Context) bool {
	filters := []struct {
		name   string
		filter api.IssueFilter
	}{
		{"Get Issues - Priority Filter (High)", api.IssueFilter{Priority: "high"}},
		{"Get Issues - Status Filter (Open)", api.IssueFilter{Status: "open"}},
		{"Get Issues - Search Filter", api.IssueFilter{Search: "test"}},
	}

	return r.track("Get Issues - Filters", func() bool {
		passed := true

		for _, f := range filters {
			endpoint, err := r.endpoints.ListIssues(f.filter)
			if err != nil {
				fmt.Fprintf(r.out, "❌ %s - Error: %v\n", f.name, err)

				passed = false

				continue
			}

			result := r.client.RunTest(ctx, api.Check{
				Name:           f.name,
				Method:         http.MethodGet,
				Endpoint:       endpoint,
				ExpectedStatus: http.StatusOK,
			})

			passed = passed && result.Success
		}

		return passed
	})
}

// GetIssue reads back the created issue.
func (r *Runner) GetIssue(ctx context.Context) bool {
	return r.issueCheck(ctx, "Get Single Issue", http.MethodGet, r.endpoints.GetIssue, nil)
}

// UpdateIssueStatus moves the created issue to in-progress.
func (r *Runner) UpdateIssueStatus(ctx context.Context) bool {
	return r.issueCheck(ctx, "Update Issue Status", http.MethodPut, r.endpoints.UpdateIssue, api.NewStatusUpdatePayload(issueStatusInProgress))
}

// AddSolution attaches a solution to the created issue.
func (r *Runner) AddSolution(ctx context.Context) bool {
	return r.issueCheck(ctx, "Add Solution to Issue", http.MethodPost, r.endpoints.AddSolution, api.NewSolutionPayload(solutionText))
}

// GetSimilarIssues asks the backend for issues similar to the created one.
func (r *Runner) GetSimilarIssues(ctx context.Context) bool {
	return r.issueCheck(ctx, "Get Similar Issues", http.MethodGet, r.endpoints.SimilarIssues, nil)
}

// DeleteIssue removes the created issue.
func (r *Runner) DeleteIssue(ctx context.Context) bool {
	return r.issueCheck(ctx, "Delete Issue", http.MethodDelete, r.endpoints.DeleteIssue, nil)
}

// issueCheck runs a single check scoped to the created issue, failing without
// a request when no issue was created.
func (r *Runner) issueCheck(ctx context.Context, name, method string, endpoint func(string) string, body any) bool {
	return r.track(name, func() bool {
		issueID, ok := r.session.IssueID()
		if !ok {
			fmt.Fprintln(r.out, "❌ No issue ID available for testing")
			return false
		}

		return r.client.RunTest(ctx, api.Check{
			Name:           name,
			Method:         method,
			Endpoint:       endpoint(issueID),
			ExpectedStatus: http.StatusOK,
			Body:           body,
		}).Success
	})
}

// stringValue renders a decoded JSON scalar, identifiers may be numeric.
func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}

	return fmt.Sprint(value)
}
