package normalize

import (
	"testing"

	"github.com/package-url/packageurl-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPackageAliasToPurl(t *testing.T) {
	cases := []struct {
		name     string
		purl     string
		expected string
	}{
		{"debian binary package is mapped to its source", "pkg:deb/debian/libc6@2.31-1", "glibc"},
		{"debian libssl is mapped to openssl", "pkg:deb/debian/libssl3@3.0.0", "openssl"},
		{"alpine libcrypto is mapped to openssl", "pkg:apk/alpine/libcrypto3@3.1.4-r0", "openssl"},
		{"unknown debian package is unchanged", "pkg:deb/debian/unknown-package@1.0.0", "unknown-package"},
		{"upstream qualifier wins", "pkg:deb/debian/libfoo1@1.0.0?upstream=foo%401.0.0", "foo"},
		{"npm packages are never mapped", "pkg:npm/express@4.18.0", "express"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			purl, err := packageurl.FromString(c.purl)
			require.NoError(t, err)

			result := applyPackageAliasToPurl(purl)

			assert.Equal(t, c.expected, result.Name)
			assert.Equal(t, purl.Version, result.Version)
			assert.Equal(t, purl.Type, result.Type)
		})
	}
}

func TestSourcePackageName(t *testing.T) {
	t.Run("should ignore the upstream qualifier on non distribution purls", func(t *testing.T) {
		purl, err := packageurl.FromString("pkg:npm/left-pad@1.3.0?upstream=other")
		require.NoError(t, err)
		_, ok := sourcePackageName(purl)
		assert.False(t, ok)
	})
}
