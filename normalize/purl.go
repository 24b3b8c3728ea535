package normalize

import (
	"strings"

	"github.com/package-url/packageurl-go"
)

// ref: https://github.com/google/osv.dev/blob/a751ceb26522f093edf26c0ad167cfd0967716d9/osv/purl_helpers.py
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// PURLEcosystems maps OSV ecosystems to purl types
var PURLEcosystems = map[string]string{
	"Alpine":    "apk",
	"crates.io": "cargo",
	"Debian":    "deb",
	"Go":        "golang",
	"Hackage":   "hackage",
	"Hex":       "hex",
	"Maven":     "maven",
	"npm":       "npm",
	"NuGet":     "nuget",
	"Packagist": "composer",
	"Pub":       "pub",
	"PyPI":      "pypi",
	"RubyGems":  "gem",
	"CRAN":      "cran",
	"SwiftURL":  "swift",
}

var purlTypeEcosystems = func() map[string]string {
	res := make(map[string]string, len(PURLEcosystems))
	for ecosystem, purlType := range PURLEcosystems {
		res[purlType] = ecosystem
	}
	return res
}()

// os package types carry the distribution in the namespace
var distroEcosystems = map[string]map[string]string{
	"deb": {
		"debian": "Debian",
		"ubuntu": "Ubuntu",
	},
	"apk": {
		"alpine":     "Alpine",
		"wolfi":      "Wolfi",
		"chainguard": "Chainguard",
	},
	"rpm": {
		"redhat":    "Red Hat",
		"almalinux": "AlmaLinux",
		"rocky":     "Rocky Linux",
		"opensuse":  "openSUSE",
		"suse":      "SUSE",
	},
}

type PackageInfo struct {
	Ecosystem string
	Name      string
	Version   string
}

// ParsePackageID parses a purl into the ecosystem and package name the vulnerability database expects.
// unknown purl types yield the UnknownEcosystem.
func ParsePackageID(packageID string) (PackageInfo, error) {
	purl, err := packageurl.FromString(packageID)
	if err != nil {
		return PackageInfo{}, err
	}
	purl = applyPackageAliasToPurl(purl)

	return PackageInfo{
		Ecosystem: ecosystemOf(purl),
		Name:      packageNameOf(purl),
		Version:   versionOf(purl),
	}, nil
}

func ecosystemOf(purl packageurl.PackageURL) string {
	purlType := strings.ToLower(purl.Type)
	if distros, ok := distroEcosystems[purlType]; ok {
		if ecosystem, ok := distros[strings.ToLower(purl.Namespace)]; ok {
			return ecosystem
		}
		if purlType == "rpm" {
			return UnknownEcosystem
		}
	}
	if ecosystem, ok := purlTypeEcosystems[purlType]; ok {
		return ecosystem
	}
	return UnknownEcosystem
}

func packageNameOf(purl packageurl.PackageURL) string {
	switch strings.ToLower(purl.Type) {
	case "maven":
		if purl.Namespace != "" {
			return purl.Namespace + ":" + purl.Name
		}
		return purl.Name
	case "deb", "apk", "rpm":
		// the namespace is the distribution
		return purl.Name
	}
	if purl.Namespace == "" {
		return purl.Name
	}
	return purl.Namespace + "/" + purl.Name
}

func versionOf(purl packageurl.PackageURL) string {
	if purl.Version == "" {
		return ""
	}
	// For Debian packages, prepend epoch from qualifier if present
	// e.g., pkg:deb/debian/git@2.47.3-0+deb13u1?epoch=1 -> "1:2.47.3-0+deb13u1"
	if purl.Type == "deb" {
		if epoch := purl.Qualifiers.Map()["epoch"]; epoch != "" {
			return epoch + ":" + purl.Version
		}
	}
	return purl.Version
}

// function to make purl look more visually appealing
func BeautifyPURL(pURL string) (string, error) {
	p, err := packageurl.FromString(pURL)
	if err != nil {
		return pURL, err
	}
	//if the namespace is empty we don't want any leading slashes
	if p.Namespace == "" {
		return p.Name, nil
	} else {
		return p.Namespace + "/" + p.Name, nil
	}
}

func ToPurlWithoutVersion(purl packageurl.PackageURL) string {
	purl.Version = ""
	purl.Qualifiers = nil
	purl.Subpath = ""
	return purl.ToString()
}
