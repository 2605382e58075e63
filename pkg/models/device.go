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

import "time"

const (
	DataItemTypeAvailability = "AVAILABILITY"
	DataItemCategoryEvent    = "EVENT"
)

// DataItem describes one observable capability of a device.
type DataItem struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// HostInfo describes the machine the monitor runs on.
type HostInfo struct {
	Hostname        string `json:"hostname,omitempty"`
	OS              string `json:"os,omitempty"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
}

// Device is the identity registered with the observation pipeline.
type Device struct {
	UUID      string     `json:"uuid"`
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	DataItems []DataItem `json:"data_items"`
	Monitor   *HostInfo  `json:"monitor,omitempty"`
}

// AvailabilityDataItem returns the device's availability data item, if any.
func (d *Device) AvailabilityDataItem() (DataItem, bool) {
	for _, item := range d.DataItems {
		if item.Type == DataItemTypeAvailability {
			return item, true
		}
	}

	return DataItem{}, false
}

// Observation is a single value reported for a device data item.
type Observation struct {
	ID         string       `json:"id"`
	DeviceUUID string       `json:"device_uuid"`
	DataItemID string       `json:"data_item_id"`
	Value      Availability `json:"value"`
	Timestamp  time.Time    `json:"timestamp"`
}
