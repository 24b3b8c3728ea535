// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package normalize

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/pkg/errors"
)

type Format string

const (
	FormatCycloneDX Format = "cyclonedx"
	FormatSPDX      Format = "spdx"
)

const (
	UnknownVersion   = "unknown"
	UnknownEcosystem = "unknown"
)

type ParseResult struct {
	Format      Format
	SpecVersion string
	// Components in declared order, duplicates included.
	Components []dtos.Component
	// SkippedCount is the number of declared components without a name.
	SkippedCount int
}

// DistinctCount returns the number of distinct component identities.
func (r ParseResult) DistinctCount() int {
	return DistinctCount(r.Components)
}

func (r ParseResult) DeclaredCount() int {
	return len(r.Components) + r.SkippedCount
}

func DistinctCount(components []dtos.Component) int {
	return utils.CountDistinct(components, dtos.Component.Identity)
}

// ParseSBOM detects the dialect of a json sbom and extracts its components.
func ParseSBOM(raw []byte) (ParseResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ParseResult{}, errors.Wrap(shared.ErrMalformedDocument, "document is empty")
	}
	if !json.Valid(trimmed) {
		return ParseResult{}, errors.Wrap(shared.ErrMalformedDocument, "document is not valid json")
	}
	if trimmed[0] != '{' {
		return ParseResult{}, errors.Wrap(shared.ErrUnsupportedFormat, "expected a json object")
	}

	format, specVersion, err := detectFormat(trimmed)
	if err != nil {
		return ParseResult{}, err
	}

	if err := validateShape(format, trimmed); err != nil {
		return ParseResult{}, err
	}

	var res ParseResult
	switch format {
	case FormatCycloneDX:
		res, err = parseCycloneDX(trimmed)
	default:
		res, err = parseSPDX(trimmed)
	}
	if err != nil {
		return ParseResult{}, err
	}
	res.Format = format
	res.SpecVersion = specVersion
	return res, nil
}

// detectFormat identifies the dialect by its marker field and returns the declared spec version.
func detectFormat(raw []byte) (Format, string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", "", errors.Wrap(shared.ErrMalformedDocument, err.Error())
	}

	if bomFormat, ok := probe["bomFormat"]; ok {
		var name string
		if err := json.Unmarshal(bomFormat, &name); err != nil || !strings.EqualFold(name, "CycloneDX") {
			return "", "", errors.Wrapf(shared.ErrUnsupportedFormat, "unknown bomFormat %s", string(bomFormat))
		}
		var specVersion string
		// a non string spec version is reported by the shape validation
		_ = json.Unmarshal(probe["specVersion"], &specVersion)
		return FormatCycloneDX, specVersion, nil
	}

	if spdxVersion, ok := probe["spdxVersion"]; ok {
		var version string
		if err := json.Unmarshal(spdxVersion, &version); err != nil || !strings.HasPrefix(version, "SPDX-2.") {
			return "", "", errors.Wrapf(shared.ErrUnsupportedFormat, "unsupported spdxVersion %s", string(spdxVersion))
		}
		return FormatSPDX, strings.TrimPrefix(version, "SPDX-"), nil
	}

	return "", "", errors.Wrap(shared.ErrUnsupportedFormat, "neither bomFormat nor spdxVersion present")
}

// newComponent builds a component from the declared fields of an sbom entry.
// the purl takes precedence for name and ecosystem, the declared version for the version.
func newComponent(name, version, purl string) dtos.Component {
	component := dtos.Component{
		Name:      strings.TrimSpace(name),
		Version:   strings.TrimSpace(version),
		Ecosystem: UnknownEcosystem,
		PackageID: strings.TrimSpace(purl),
	}

	if component.PackageID != "" {
		if info, err := ParsePackageID(component.PackageID); err == nil {
			if info.Ecosystem != UnknownEcosystem {
				component.Ecosystem = info.Ecosystem
				component.Name = info.Name
			}
			if component.Version == "" {
				component.Version = info.Version
			}
		}
	}

	if component.Version == "" {
		component.Version = UnknownVersion
	}
	return component
}
