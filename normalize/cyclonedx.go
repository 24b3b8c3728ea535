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
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
)

func parseCycloneDX(raw []byte) (ParseResult, error) {
	var bom cdx.BOM
	if err := cdx.NewBOMDecoder(bytes.NewReader(raw), cdx.BOMFileFormatJSON).Decode(&bom); err != nil {
		return ParseResult{}, errors.Wrap(shared.ErrMalformedDocument, err.Error())
	}
	if bom.Components == nil {
		return ParseResult{}, errors.Wrap(shared.ErrMalformedDocument, "cyclonedx document has no components list")
	}

	res := ParseResult{
		Components: make([]dtos.Component, 0, len(*bom.Components)),
	}
	// the metadata component describes the subject of the sbom itself and is not a dependency
	walkCycloneDXComponents(*bom.Components, &res)
	return res, nil
}

// walkCycloneDXComponents visits nested components depth first, parents before their children.
func walkCycloneDXComponents(components []cdx.Component, res *ParseResult) {
	for _, c := range components {
		if strings.TrimSpace(c.Name) == "" {
			res.SkippedCount++
		} else {
			res.Components = append(res.Components, newComponent(c.Name, c.Version, c.PackageURL))
		}
		if c.Components != nil {
			walkCycloneDXComponents(*c.Components, res)
		}
	}
}
