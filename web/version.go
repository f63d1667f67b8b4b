// Copyright (c) 2022 The rcproxy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"): you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is set at build time via -ldflags "-X .../web.Version=...".
var Version = "dev"

type versionRes struct {
	Version string `json:"version"`
}

func HandleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, versionRes{Version: Version})
}
