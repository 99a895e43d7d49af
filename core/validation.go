// Copyright 2025 Poiesic Systems
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


package core

import (
	"fmt"
	"strings"
)

// ValidateKnowledgeEntry validates a KnowledgeEntry according to domain rules.
//
// Validation rules:
//   - Question must not be empty after trimming
//   - Answer must not be empty after trimming
//   - Confidence must be within [0, 1]
//
// NOT validated (populated by the store):
//   - ID (0 is valid before insert)
//   - NormalizedQuestion (derived from Question on every write)
//   - Timestamps (set by the repository)
func ValidateKnowledgeEntry(entry *KnowledgeEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if strings.TrimSpace(entry.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyQuestion)
	}

	if strings.TrimSpace(entry.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyAnswer)
	}

	if entry.Confidence < 0 || entry.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrConfidenceRange)
	}

	return nil
}
