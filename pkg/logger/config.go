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

package logger

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultConfig is used when the service configuration has no "logging"
// section. LOG_LEVEL, DEBUG, LOG_OUTPUT and LOG_TIME_FORMAT override it.
func DefaultConfig() *Config {
	return &Config{
		Level:      envString("LOG_LEVEL", zerolog.InfoLevel.String()),
		Debug:      envFlag("DEBUG"),
		Output:     envString("LOG_OUTPUT", "stdout"),
		TimeFormat: os.Getenv("LOG_TIME_FORMAT"),
	}
}

// level resolves the effective level. Debug wins over Level.
func (c *Config) level() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}

	if c.Level == "" {
		return zerolog.InfoLevel, nil
	}

	return zerolog.ParseLevel(strings.ToLower(c.Level))
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}

// envFlag accepts strconv booleans plus "yes" and "on".
func envFlag(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))

	switch v {
	case "yes", "on":
		return true
	default:
		b, _ := strconv.ParseBool(v)

		return b
	}
}
