/*
 * config.go, part of gomdtools.
 *
 *
 * Copyright 2026 The gomdtools Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// yamlLoader reads a YAML configuration file for kong. Keys are flag names
// and apply to every command that has that flag:
//
//	log-level: debug
//	ranks: 4
//	standard: misa-be
//	minio-endpoint: localhost:9000
//
// Hyphens in keys become underscores, and the result is handed to kong's
// JSON resolver. Flags given on the command line win over the file.
func yamlLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	flat := make(map[string]any, len(values))
	for k, v := range values {
		flat[strings.ReplaceAll(k, "-", "_")] = v
	}
	b, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	return kong.JSON(bytes.NewReader(b))
}
