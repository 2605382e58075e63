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

package models

import (
	"errors"
	"fmt"
)

var errInvalidAvailability = errors.New("invalid availability")

// Availability is the only value the monitor ever emits for a gateway.
type Availability string

const (
	Available   Availability = "AVAILABLE"
	Unavailable Availability = "UNAVAILABLE"
)

// AvailabilityFromBool maps a pass/fail aggregate to an Availability.
func AvailabilityFromBool(ok bool) Availability {
	if ok {
		return Available
	}

	return Unavailable
}

// IsAvailable reports whether a is exactly AVAILABLE. Anything else is treated as unavailable.
func (a Availability) IsAvailable() bool {
	return a == Available
}

func (a Availability) String() string {
	return string(a)
}

// UnmarshalText rejects anything but the two known values.
func (a *Availability) UnmarshalText(b []byte) error {
	switch Availability(b) {
	case Available, Unavailable:
		*a = Availability(b)
		return nil
	default:
		return fmt.Errorf("%w: %q", errInvalidAvailability, string(b))
	}
}
