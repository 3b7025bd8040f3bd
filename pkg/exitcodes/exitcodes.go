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

// Package exitcodes defines the process exit codes of the runner.
//
// * Success (0): the pass rate reached the configured threshold
// * TestFailure (1): the pass rate fell short, or authentication failed
// * RuntimeErr (2): the runner could not start, e.g. invalid configuration
package exitcodes

const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
