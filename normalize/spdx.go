package normalize

import (
	"encoding/json"
	"strings"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
)

type spdxExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

type spdxPackage struct {
	SPDXID       string            `json:"SPDXID"`
	Name         string            `json:"name"`
	VersionInfo  string            `json:"versionInfo"`
	ExternalRefs []spdxExternalRef `json:"externalRefs"`
}

type spdxDocument struct {
	SPDXVersion string         `json:"spdxVersion"`
	Packages    *[]spdxPackage `json:"packages"`
}

func (p spdxPackage) purl() string {
	for _, ref := range p.ExternalRefs {
		if strings.EqualFold(ref.ReferenceType, "purl") {
			return ref.ReferenceLocator
		}
	}
	return ""
}

func parseSPDX(raw []byte) (ParseResult, error) {
	var doc spdxDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ParseResult{}, errors.Wrap(shared.ErrMalformedDocument, err.Error())
	}
	if doc.Packages == nil {
		return ParseResult{}, errors.Wrap(shared.ErrMalformedDocument, "spdx document has no packages list")
	}

	res := ParseResult{
		Components: make([]dtos.Component, 0, len(*doc.Packages)),
	}
	for _, pkg := range *doc.Packages {
		if strings.TrimSpace(pkg.Name) == "" {
			res.SkippedCount++
			continue
		}
		res.Components = append(res.Components, newComponent(pkg.Name, spdxVersion(pkg.VersionInfo), pkg.purl()))
	}
	return res, nil
}

// spdx tools write NOASSERTION when the version is not known
func spdxVersion(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "NOASSERTION") {
		return ""
	}
	return v
}
