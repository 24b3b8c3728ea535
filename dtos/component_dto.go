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

package dtos

// Component is a single software component declared in an sbom.
type Component struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	PackageID string `json:"packageId,omitempty"`
	Ecosystem string `json:"ecosystem"`
}

// ComponentIdentity is the deduplication key of a component.
type ComponentIdentity struct {
	Ecosystem string
	Name      string
	Version   string
}

func (i ComponentIdentity) String() string {
	return i.Ecosystem + "/" + i.Name + "@" + i.Version
}

func (c Component) Identity() ComponentIdentity {
	return ComponentIdentity{
		Ecosystem: c.Ecosystem,
		Name:      c.Name,
		Version:   c.Version,
	}
}

func (c Component) Ref() ComponentRef {
	return ComponentRef{
		Ecosystem: c.Ecosystem,
		Name:      c.Name,
		Version:   c.Version,
		PackageID: c.PackageID,
	}
}

type ComponentRef struct {
	Ecosystem string `json:"ecosystem"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	PackageID string `json:"packageId,omitempty"`
}
