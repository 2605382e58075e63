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

package monitor

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/carverauto/gatewaymon/pkg/models"
)

// NewDevice builds the device identity for cfg with a single availability data item.
func NewDevice(cfg *Config, monitorHost *models.HostInfo) *models.Device {
	return &models.Device{
		UUID: cfg.DeviceUUID(),
		ID:   cfg.DeviceName,
		Name: cfg.DeviceName,
		DataItems: []models.DataItem{{
			ID:       cfg.DeviceName + "_avail",
			Type:     models.DataItemTypeAvailability,
			Category: models.DataItemCategoryEvent,
		}},
		Monitor: monitorHost,
	}
}

// CollectHostInfo describes the machine the monitor is running on.
func CollectHostInfo(ctx context.Context) (*models.HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect host info: %w", err)
	}

	return &models.HostInfo{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
	}, nil
}
