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
	"strings"

	"k8s.io/utils/ptr"
)

// Session is the mutable state shared by the client and the scenarios of one run.
// TestsRun and TestsPassed are only advanced by APIClient.RunTest, which keeps
// TestsPassed <= TestsRun.
type Session struct {
	// BaseURL is the API root every endpoint is relative to.
	BaseURL string

	// AuthToken is the bearer token, nil until a login or registration succeeds.
	AuthToken *string

	// CurrentUserID identifies the authenticated user.
	CurrentUserID *string

	// CreatedIssueID is set once an issue has been created, and is required
	// by every scenario operating on that issue.
	CreatedIssueID *string

	TestsRun    int
	TestsPassed int
}

// NewSession returns an unauthenticated session for the given API root.
func NewSession(baseURL string) *Session {
	return &Session{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Authenticate records the credentials returned by a login or registration.
func (s *Session) Authenticate(token, userID string) {
	s.AuthToken = ptr.To(token)

	if userID != "" {
		s.CurrentUserID = ptr.To(userID)
	}
}

// Token returns the bearer token, or an empty string if not authenticated.
func (s *Session) Token() string {
	return ptr.Deref(s.AuthToken, "")
}

// IssueID returns the created issue's identifier and whether one is set.
func (s *Session) IssueID() (string, bool) {
	if s.CreatedIssueID == nil {
		return "", false
	}

	return *s.CreatedIssueID, true
}

// SuccessRate returns the percentage of checks that passed, 0 when none ran.
func (s *Session) SuccessRate() float64 {
	if s.TestsRun == 0 {
		return 0
	}

	return float64(s.TestsPassed) / float64(s.TestsRun) * 100
}
