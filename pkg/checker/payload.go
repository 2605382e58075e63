/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package checker

import (
	"fmt"
	"strings"

	"github.com/carverauto/gatewaymon/pkg/models"
)

const statusToken = `"STATUS"`

// ParseHealthPayload maps a health endpoint body to an Availability.
//
// Rules, first match wins:
//  1. body mentions "status" and UNAVAILABLE -> UNAVAILABLE
//  2. body mentions "status" and AVAILABLE   -> AVAILABLE
//  3. trimmed body is AVAILABLE              -> AVAILABLE
//  4. trimmed body is UNAVAILABLE            -> UNAVAILABLE
//
// Matching is case-insensitive. UNAVAILABLE is tested first in the "status" branch
// because it contains AVAILABLE as a substring. A body matching nothing returns
// ErrUnrecognizedPayload together with Unavailable.
func ParseHealthPayload(body []byte) (models.Availability, error) {
	upper := strings.ToUpper(string(body))

	if strings.Contains(upper, statusToken) {
		if strings.Contains(upper, string(models.Unavailable)) {
			return models.Unavailable, nil
		}

		if strings.Contains(upper, string(models.Available)) {
			return models.Available, nil
		}
	}

	bare := strings.Trim(strings.TrimSpace(upper), `"`)

	switch models.Availability(bare) {
	case models.Available:
		return models.Available, nil
	case models.Unavailable:
		return models.Unavailable, nil
	}

	return models.Unavailable, fmt.Errorf("%w: %s", ErrUnrecognizedPayload, preview(body))
}

const maxPreview = 128

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxPreview {
		return s[:maxPreview] + "..."
	}

	return s
}
