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

//go:build windows

package service

import (
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

type scmManager struct {
	handle windows.Handle
}

func openServiceManager() (serviceManager, error) {
	h, err := windows.OpenSCManager(nil, nil, windows.SC_MANAGER_CONNECT)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSCMUnavailable, err)
	}

	return &scmManager{handle: h}, nil
}

func (m *scmManager) IsRunning(name string) (bool, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return false, fmt.Errorf("%w: %w", errInvalidServiceName, err)
	}

	h, err := windows.OpenService(m.handle, namePtr, windows.SERVICE_QUERY_STATUS)
	if err != nil {
		return false, fmt.Errorf("failed to open service %s: %w", name, err)
	}

	s := &mgr.Service{Name: name, Handle: h}
	defer func() { _ = s.Close() }()

	status, err := s.Query()
	if err != nil {
		return false, fmt.Errorf("failed to query service %s: %w", name, err)
	}

	return status.State == svc.Running, nil
}

func (m *scmManager) Close() error {
	return windows.CloseServiceHandle(m.handle)
}
