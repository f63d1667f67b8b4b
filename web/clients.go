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

	redis "github.com/rcproxy/goredisasync"
)

// ClientRes is the JSON view of one registered client, in the same
// shape a ClusterNodeRes projection would take for one cluster node.
type ClientRes struct {
	ID    uint64 `json:"id"`
	State string `json:"state"`
}

// HandleClients dumps every live client's id and connection state,
// reading the registry from a goroutine other than any client's own
// loop goroutine, which is why client_registry.go backs it with a
// concurrent-safe map instead of the client package's usual
// single-goroutine contract.
func HandleClients(c *gin.Context) {
	var res []ClientRes
	for id, cl := range redis.Snapshot() {
		res = append(res, ClientRes{ID: id, State: cl.State().String()})
	}
	c.JSON(http.StatusOK, res)
}
