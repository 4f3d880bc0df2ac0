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

// Package id mints identifiers for persisted entities. UUIDv7 keeps ids
// time-ordered, which makes newest-first listings index-friendly.
package id

import "github.com/google/uuid"

// New returns a new UUIDv7 string. Falls back to UUIDv4 only if the
// system's entropy source fails, which uuid treats as unrecoverable.
func New() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}
