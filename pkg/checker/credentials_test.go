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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCredential(t *testing.T) {
	assert.Equal(t, "env", ResolveCredential("env", "config"))
	assert.Equal(t, "config", ResolveCredential("", "config"))
	assert.Empty(t, ResolveCredential("", ""))
}

func TestResolveCredentials(t *testing.T) {
	tests := []struct {
		name   string
		env    Credentials
		config Credentials
		want   Credentials
		wantOK bool
	}{
		{
			name:   "environment wins",
			env:    Credentials{Username: "envuser", Password: "envpass"},
			config: Credentials{Username: "cfguser", Password: "cfgpass"},
			want:   Credentials{Username: "envuser", Password: "envpass"},
			wantOK: true,
		},
		{
			name:   "config fallback",
			config: Credentials{Username: "cfguser", Password: "cfgpass"},
			want:   Credentials{Username: "cfguser", Password: "cfgpass"},
			wantOK: true,
		},
		{
			name:   "fields resolve independently",
			env:    Credentials{Password: "envpass"},
			config: Credentials{Username: "cfguser", Password: "cfgpass"},
			want:   Credentials{Username: "cfguser", Password: "envpass"},
			wantOK: true,
		},
		{
			name:   "missing password disables auth",
			config: Credentials{Username: "cfguser"},
		},
		{
			name: "nothing configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveCredentials(tt.env, tt.config)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
