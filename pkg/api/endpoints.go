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

package api

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// Endpoints contains all API endpoint patterns. Paths are relative to the
// session's base URL, which already carries the /api prefix.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// IssueFilter selects issues on the list endpoint, empty fields are omitted.
type IssueFilter struct {
	Priority string
	Status   string
	Search   string
}

// Authentication endpoints.
func (e *Endpoints) Register() string {
	return "auth/register"
}

func (e *Endpoints) Login() string {
	return "auth/login"
}

func (e *Endpoints) CurrentUser() string {
	return "auth/me"
}

// Issue management endpoints.
func (e *Endpoints) CreateIssue() string {
	return "issues"
}

// ListIssues renders the list endpoint with the filter as query parameters,
// styled the same way generated clients encode form parameters.
func (e *Endpoints) ListIssues(filter IssueFilter) (string, error) {
	params := []struct {
		name  string
		value string
	}{
		{"priority", filter.Priority},
		{"status", filter.Status},
		{"search", filter.Search},
	}

	queryValues := url.Values{}

	for _, param := range params {
		if param.value == "" {
			continue
		}

		queryFrag, err := runtime.StyleParamWithLocation("form", true, param.name, runtime.ParamLocationQuery, param.value)
		if err != nil {
			return "", fmt.Errorf("styling %s parameter: %w", param.name, err)
		}

		parsed, err := url.ParseQuery(queryFrag)
		if err != nil {
			return "", fmt.Errorf("parsing %s parameter: %w", param.name, err)
		}

		for k, v := range parsed {
			for _, v2 := range v {
				queryValues.Add(k, v2)
			}
		}
	}

	if len(queryValues) == 0 {
		return "issues", nil
	}

	return "issues?" + queryValues.Encode(), nil
}

func (e *Endpoints) GetIssue(issueID string) string {
	return fmt.Sprintf("issues/%s", url.PathEscape(issueID))
}

func (e *Endpoints) UpdateIssue(issueID string) string {
	return fmt.Sprintf("issues/%s", url.PathEscape(issueID))
}

func (e *Endpoints) DeleteIssue(issueID string) string {
	return fmt.Sprintf("issues/%s", url.PathEscape(issueID))
}

func (e *Endpoints) AddSolution(issueID string) string {
	return fmt.Sprintf("issues/%s/solutions", url.PathEscape(issueID))
}

func (e *Endpoints) SimilarIssues(issueID string) string {
	return fmt.Sprintf("issues/%s/similar", url.PathEscape(issueID))
}
