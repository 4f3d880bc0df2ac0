// Copyright 2026 The Rolegate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package roles

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed or missing required field. It names
// the field so callers can correct the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field %q %s", e.Field, e.Reason)
}

// InvalidPermissionsError reports permission identifiers that are not in
// the catalog. The whole write is rejected; valid entries are never
// silently kept while invalid ones are dropped.
type InvalidPermissionsError struct {
	Permissions []string
}

func (e *InvalidPermissionsError) Error() string {
	return fmt.Sprintf("invalid permissions: %s", strings.Join(e.Permissions, ", "))
}
