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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// timeStamp matches the HHMMSS suffix used to tell test data apart.
const timeStamp = "150405"

func generateRandomSuffix() string {
	bytes := make([]byte, 4) // 8 hex characters
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// GenerateTestEmail returns an email address that has not been registered before.
func GenerateTestEmail(now time.Time) string {
	return fmt.Sprintf("test_user_%s_%s@test.com", now.Format(timeStamp), generateRandomSuffix())
}

// NewCredentialsPayload builds a login request body.
func NewCredentialsPayload(email, password string) map[string]interface{} {
	return map[string]interface{}{
		"email":    email,
		"password": password,
	}
}

// NewRegistrationPayload builds a registration request body.
func NewRegistrationPayload(email, password, name string) map[string]interface{} {
	return map[string]interface{}{
		"email":    email,
		"password": password,
		"name":     name,
	}
}

// IssuePayloadBuilder builds issue payloads for testing.
type IssuePayloadBuilder struct {
	payload map[string]interface{}
}

// NewIssuePayload creates a new issue payload builder with a unique title.
func NewIssuePayload(now time.Time) *IssuePayloadBuilder {
	return &IssuePayloadBuilder{
		payload: map[string]interface{}{
			"title":       fmt.Sprintf("Test Issue %s", now.Format(timeStamp)),
			"description": "This is a test issue created by automated testing",
			"priority":    "high",
		},
	}
}

// WithTitle sets the issue title.
func (b *IssuePayloadBuilder) WithTitle(title string) *IssuePayloadBuilder {
	b.payload["title"] = title
	return b
}

// WithDescription sets the issue description.
func (b *IssuePayloadBuilder) WithDescription(desc string) *IssuePayloadBuilder {
	b.payload["description"] = desc
	return b
}

// WithPriority sets the priority (pass empty string to omit).
func (b *IssuePayloadBuilder) WithPriority(priority string) *IssuePayloadBuilder {
	if priority == "" {
		delete(b.payload, "priority")
	} else {
		b.payload["priority"] = priority
	}

	return b
}

// Build returns the completed issue payload.
func (b *IssuePayloadBuilder) Build() map[string]interface{} {
	return b.payload
}

// NewStatusUpdatePayload builds an issue update that only changes the status.
func NewStatusUpdatePayload(status string) map[string]interface{} {
	return map[string]interface{}{
		"status": status,
	}
}

// NewSolutionPayload builds a solution attached to an issue.
func NewSolutionPayload(text string) map[string]interface{} {
	return map[string]interface{}{
		"solution_text": text,
	}
}
