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

// Credentials are the Basic-auth pair sent to the health endpoint.
type Credentials struct {
	Username string
	Password string
}

// ResolveCredential returns the environment value when it is set, else the configured one.
func ResolveCredential(envValue, configValue string) string {
	if envValue != "" {
		return envValue
	}

	return configValue
}

// ResolveCredentials resolves each field independently. Credentials are only usable
// when both the username and the password resolve to non-empty values.
func ResolveCredentials(env, configured Credentials) (Credentials, bool) {
	creds := Credentials{
		Username: ResolveCredential(env.Username, configured.Username),
		Password: ResolveCredential(env.Password, configured.Password),
	}

	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, false
	}

	return creds, true
}
