// Copyright (C) 2025 l3montree GmbH
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
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"github.com/package-url/packageurl-go"
)

// Distribution advisories are published per source package while sboms list
// binary packages. Keyed by purl type, then binary package name.
var (
	//go:embed package_mappings.json
	packageMappingsJSON []byte
	sourcePackages      = sync.OnceValue(func() map[string]map[string]string {
		var m map[string]map[string]string
		if err := json.Unmarshal(packageMappingsJSON, &m); err != nil {
			panic(fmt.Sprintf("invalid embedded package mappings: %v", err))
		}
		return map[string]map[string]string{
			"deb": m["debian"],
			"apk": m["alpine"],
		}
	})
)

// sourcePackageName resolves the source package of a distribution binary package.
// An explicit upstream qualifier wins over the embedded table.
func sourcePackageName(purl packageurl.PackageURL) (string, bool) {
	table, ok := sourcePackages()[purl.Type]
	if !ok {
		return "", false
	}
	if upstream := purl.Qualifiers.Map()["upstream"]; upstream != "" {
		// the qualifier may carry a version, "openssl@3.0.11"
		name, _, _ := strings.Cut(upstream, "@")
		return name, true
	}
	name, ok := table[purl.Name]
	return name, ok && name != ""
}

func applyPackageAliasToPurl(purl packageurl.PackageURL) packageurl.PackageURL {
	if name, ok := sourcePackageName(purl); ok {
		purl.Name = name
	}
	return purl
}
