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

// Package api provides the HTTP client used to exercise an issue tracker API.
//
// # Checks
//
// Every request the runner makes is a check: a named request paired with the
// status code the backend is expected to return. APIClient.RunTest executes a
// check and reports the outcome as a Result rather than an error, so a failing
// backend never stops a run. The shared Session records how many checks ran
// and how many passed, along with the credentials and the identifier of the
// issue created during the run.
//
// # Client Features
//
// The client is deliberately hand written rather than generated, because the
// runner needs direct access to the raw status code and body of every call:
//   - W3C trace context propagation for request correlation
//   - Bearer token management driven by the session
//   - Tolerant JSON decoding, an unparsable body is treated as empty
//   - Per-check metrics and human readable progress output
package api
