package normalize

import (
	"testing"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cycloneDXDocument = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.5",
  "version": 1,
  "metadata": {
    "component": {"type": "application", "name": "vendor-app", "version": "1.0.0"}
  },
  "components": [
    {"type": "library", "name": "lodash", "version": "4.17.20", "purl": "pkg:npm/lodash@4.17.20"},
    {"type": "library", "name": "left-pad", "version": "1.3.0", "purl": "pkg:npm/left-pad@1.3.0",
      "components": [
        {"type": "library", "name": "nested", "version": "0.1.0", "purl": "pkg:npm/nested@0.1.0"}
      ]
    },
    {"type": "library", "name": "lodash", "version": "4.17.20", "purl": "pkg:npm/lodash@4.17.20"},
    {"type": "library", "name": "", "version": "1.0.0"},
    {"type": "library", "name": "internal-lib"}
  ]
}`

const spdxFixture = `{
  "spdxVersion": "SPDX-2.3",
  "SPDXID": "SPDXRef-DOCUMENT",
  "name": "vendor-app",
  "packages": [
    {
      "SPDXID": "SPDXRef-Package-django",
      "name": "Django",
      "versionInfo": "4.2.1",
      "externalRefs": [
        {"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:pypi/django@4.2.1"}
      ]
    },
    {"SPDXID": "SPDXRef-Package-unknown", "name": "homegrown", "versionInfo": "NOASSERTION"},
    {"SPDXID": "SPDXRef-Package-noname", "versionInfo": "1.0.0"}
  ]
}`

func TestParseSBOM(t *testing.T) {
	t.Run("should parse cyclonedx documents including nested components in declared order", func(t *testing.T) {
		res, err := ParseSBOM([]byte(cycloneDXDocument))
		require.NoError(t, err)

		assert.Equal(t, FormatCycloneDX, res.Format)
		assert.Equal(t, "1.5", res.SpecVersion)
		assert.Equal(t, 1, res.SkippedCount)
		assert.Equal(t, []dtos.Component{
			{Name: "lodash", Version: "4.17.20", PackageID: "pkg:npm/lodash@4.17.20", Ecosystem: "npm"},
			{Name: "left-pad", Version: "1.3.0", PackageID: "pkg:npm/left-pad@1.3.0", Ecosystem: "npm"},
			{Name: "nested", Version: "0.1.0", PackageID: "pkg:npm/nested@0.1.0", Ecosystem: "npm"},
			{Name: "lodash", Version: "4.17.20", PackageID: "pkg:npm/lodash@4.17.20", Ecosystem: "npm"},
			{Name: "internal-lib", Version: UnknownVersion, Ecosystem: UnknownEcosystem},
		}, res.Components)
		assert.Equal(t, 4, res.DistinctCount())
		assert.Equal(t, 6, res.DeclaredCount())
	})

	t.Run("should parse spdx documents", func(t *testing.T) {
		res, err := ParseSBOM([]byte(spdxFixture))
		require.NoError(t, err)

		assert.Equal(t, FormatSPDX, res.Format)
		assert.Equal(t, "2.3", res.SpecVersion)
		assert.Equal(t, 1, res.SkippedCount)
		assert.Equal(t, []dtos.Component{
			{Name: "django", Version: "4.2.1", PackageID: "pkg:pypi/django@4.2.1", Ecosystem: "PyPI"},
			{Name: "homegrown", Version: UnknownVersion, Ecosystem: UnknownEcosystem},
		}, res.Components)
	})

	t.Run("should take the version from the purl if none is declared", func(t *testing.T) {
		res, err := ParseSBOM([]byte(`{"bomFormat":"CycloneDX","specVersion":"1.4","components":[{"type":"library","name":"lodash","purl":"pkg:npm/lodash@4.17.21"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "4.17.21", res.Components[0].Version)
	})

	t.Run("should accept an empty component list", func(t *testing.T) {
		res, err := ParseSBOM([]byte(`{"bomFormat":"CycloneDX","specVersion":"1.5","components":[]}`))
		require.NoError(t, err)
		assert.Empty(t, res.Components)
		assert.Equal(t, 0, res.DistinctCount())
	})

	t.Run("should reject documents that are not json", func(t *testing.T) {
		_, err := ParseSBOM([]byte(`{"bomFormat": "CycloneDX", `))
		assert.ErrorIs(t, err, shared.ErrMalformedDocument)
		assert.Equal(t, shared.ErrorKindMalformedDocument, shared.KindOf(err))

		_, err = ParseSBOM(nil)
		assert.ErrorIs(t, err, shared.ErrMalformedDocument)
	})

	t.Run("should reject json without a known dialect marker", func(t *testing.T) {
		_, err := ParseSBOM([]byte(`{"packages": []}`))
		assert.ErrorIs(t, err, shared.ErrUnsupportedFormat)

		_, err = ParseSBOM([]byte(`[1, 2, 3]`))
		assert.ErrorIs(t, err, shared.ErrUnsupportedFormat)

		_, err = ParseSBOM([]byte(`{"bomFormat": "SomethingElse", "components": []}`))
		assert.ErrorIs(t, err, shared.ErrUnsupportedFormat)

		_, err = ParseSBOM([]byte(`{"spdxVersion": "SPDX-3.0", "packages": []}`))
		assert.ErrorIs(t, err, shared.ErrUnsupportedFormat)
	})

	t.Run("should reject documents without a recognizable component list", func(t *testing.T) {
		_, err := ParseSBOM([]byte(`{"bomFormat":"CycloneDX","specVersion":"1.5"}`))
		assert.ErrorIs(t, err, shared.ErrMalformedDocument)

		_, err = ParseSBOM([]byte(`{"bomFormat":"CycloneDX","specVersion":"1.5","components":"lodash"}`))
		assert.ErrorIs(t, err, shared.ErrMalformedDocument)

		_, err = ParseSBOM([]byte(`{"spdxVersion":"SPDX-2.3","packages":[{"name": 42}]}`))
		assert.ErrorIs(t, err, shared.ErrMalformedDocument)
	})
}

func TestContentHash(t *testing.T) {
	a := dtos.Component{Name: "lodash", Version: "4.17.20", Ecosystem: "npm"}
	b := dtos.Component{Name: "left-pad", Version: "1.3.0", Ecosystem: "npm"}

	t.Run("should be stable under reordering", func(t *testing.T) {
		assert.Equal(t, ContentHash([]dtos.Component{a, b}), ContentHash([]dtos.Component{b, a}))
	})

	t.Run("should differ for different component lists", func(t *testing.T) {
		assert.NotEqual(t, ContentHash([]dtos.Component{a}), ContentHash([]dtos.Component{a, b}))
		assert.NotEqual(t, ContentHash([]dtos.Component{a}), ContentHash([]dtos.Component{a, a}))
	})

	t.Run("should be equal for documents of different dialects declaring the same components", func(t *testing.T) {
		cdxRes, err := ParseSBOM([]byte(`{"bomFormat":"CycloneDX","specVersion":"1.5","components":[{"type":"library","name":"django","version":"4.2.1","purl":"pkg:pypi/django@4.2.1"}]}`))
		require.NoError(t, err)
		spdxRes, err := ParseSBOM([]byte(`{"spdxVersion":"SPDX-2.3","packages":[{"name":"Django","versionInfo":"4.2.1","externalRefs":[{"referenceType":"purl","referenceLocator":"pkg:pypi/django@4.2.1"}]}]}`))
		require.NoError(t, err)
		assert.Equal(t, ContentHash(cdxRes.Components), ContentHash(spdxRes.Components))
	})
}
