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

package vulndb

import "github.com/l3montree-dev/sbomguard/dtos"

// deduplicateByAlias removes advisories which describe the same vulnerability
// as another advisory of the result set. An advisory which is the alias target of
// another advisory is removed. If both alias each other, the lexicographically
// smaller id is kept.
func deduplicateByAlias(vulns []dtos.OSV) []dtos.OSV {
	if len(vulns) <= 1 {
		return vulns
	}

	present := make(map[string]bool, len(vulns))
	aliasTargets := make(map[string]map[string]bool, len(vulns))
	for _, v := range vulns {
		present[v.ID] = true
		for _, alias := range v.Aliases {
			if aliasTargets[v.ID] == nil {
				aliasTargets[v.ID] = make(map[string]bool)
			}
			aliasTargets[v.ID][alias] = true
		}
	}

	exclude := make(map[string]bool)
	for _, v := range vulns {
		if exclude[v.ID] {
			continue
		}
		for other := range present {
			if other == v.ID || !aliasTargets[other][v.ID] {
				continue
			}
			if aliasTargets[v.ID][other] && v.ID < other {
				// bidirectional, v wins
				continue
			}
			exclude[v.ID] = true
			break
		}
	}

	result := make([]dtos.OSV, 0, len(vulns)-len(exclude))
	for _, v := range vulns {
		if !exclude[v.ID] {
			result = append(result, v)
		}
	}
	return result
}
