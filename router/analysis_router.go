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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package router

import (
	"github.com/l3montree-dev/sbomguard/controllers"
	"github.com/labstack/echo/v4"
)

type AnalysisRouter struct {
	*echo.Group
}

func NewAnalysisRouter(
	apiV1Router APIV1Router,
	analysisController *controllers.AnalysisController,
) AnalysisRouter {
	/**
	Tenant scoped router
	The tenant is authenticated upstream, the id is taken as is.
	*/
	analysisRouter := apiV1Router.Group.Group("/tenants/:tenantID/analyses")
	analysisRouter.GET("/", analysisController.List)
	analysisRouter.POST("/", analysisController.Submit)
	analysisRouter.GET("/:analysisID/", analysisController.Read)
	analysisRouter.GET("/:analysisID/cyclonedx/", analysisController.CycloneDX)
	analysisRouter.DELETE("/:analysisID/run/", analysisController.Cancel)

	return AnalysisRouter{Group: analysisRouter}
}
