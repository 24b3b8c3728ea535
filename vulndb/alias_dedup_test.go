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

import (
	"testing"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/stretchr/testify/assert"
)

func ids(vulns []dtos.OSV) []string {
	res := make([]string, len(vulns))
	for i, v := range vulns {
		res[i] = v.ID
	}
	return res
}

func TestDeduplicateByAlias(t *testing.T) {
	t.Run("empty input returns empty", func(t *testing.T) {
		assert.Empty(t, deduplicateByAlias([]dtos.OSV{}))
	})

	t.Run("no aliases returns all vulns", func(t *testing.T) {
		vulns := []dtos.OSV{{ID: "GHSA-1"}, {ID: "GHSA-2"}}
		assert.Equal(t, []string{"GHSA-1", "GHSA-2"}, ids(deduplicateByAlias(vulns)))
	})

	t.Run("aliases outside of the result set are ignored", func(t *testing.T) {
		vulns := []dtos.OSV{{ID: "GHSA-1", Aliases: []string{"CVE-2024-1"}}, {ID: "GHSA-2", Aliases: []string{"CVE-2024-2"}}}
		assert.Len(t, deduplicateByAlias(vulns), 2)
	})

	t.Run("unidirectional alias removes target", func(t *testing.T) {
		vulns := []dtos.OSV{{ID: "GHSA-1", Aliases: []string{"PYSEC-1"}}, {ID: "PYSEC-1"}}
		assert.Equal(t, []string{"GHSA-1"}, ids(deduplicateByAlias(vulns)))
	})

	t.Run("bidirectional alias keeps the lexicographically smaller id", func(t *testing.T) {
		vulns := []dtos.OSV{
			{ID: "PYSEC-2021-1", Aliases: []string{"GHSA-abcd", "CVE-2021-1"}},
			{ID: "GHSA-abcd", Aliases: []string{"PYSEC-2021-1", "CVE-2021-1"}},
		}
		assert.Equal(t, []string{"GHSA-abcd"}, ids(deduplicateByAlias(vulns)))
	})

	t.Run("should be deterministic for alias chains", func(t *testing.T) {
		vulns := []dtos.OSV{
			{ID: "A", Aliases: []string{"B"}},
			{ID: "B", Aliases: []string{"A"}},
			{ID: "C", Aliases: []string{"B"}},
		}
		for range 20 {
			assert.Equal(t, []string{"A", "C"}, ids(deduplicateByAlias(vulns)))
		}
	})
}
