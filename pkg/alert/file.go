// Copyright 2025 Tom Barlow
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

package alert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	fwerrors "github.com/tombee/fetchwire/pkg/errors"
)

// File is the on-disk layout of a directive list.
type File struct {
	Alerts []Directive `yaml:"alerts"`
}

// Parse reads directives from YAML and validates them.
func Parse(data []byte) ([]Directive, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &fwerrors.ValidationError{
			Field:   "alerts",
			Message: fmt.Sprintf("invalid YAML: %s", err.Error()),
		}
	}

	for i, d := range f.Alerts {
		if _, err := compile(i, d); err != nil {
			return nil, err
		}
	}
	return f.Alerts, nil
}

// Load reads directives from a YAML file.
func Load(path string) ([]Directive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fwerrors.Wrapf(err, "reading alerts file %s", path)
	}
	directives, err := Parse(data)
	if err != nil {
		return nil, fwerrors.Wrapf(err, "loading alerts file %s", path)
	}
	return directives, nil
}

// LoadGlob loads every file matching pattern in lexical order. "**"
// matches any number of directories. A pattern with no glob
// metacharacters must name an existing file; a glob matching nothing
// yields no directives.
func LoadGlob(pattern string) ([]Directive, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return Load(pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, &fwerrors.ValidationError{
			Field:   "alerts_file",
			Message: fmt.Sprintf("invalid glob pattern %q", pattern),
		}
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fwerrors.Wrapf(err, "expanding alerts pattern %s", pattern)
	}
	slices.Sort(matches)

	var directives []Directive
	for _, path := range matches {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		directives = append(directives, loaded...)
	}
	return directives, nil
}
