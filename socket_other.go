// Copyright (c) 2022 The rcproxy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !linux

package redis

import "net"

// applyPlatformSocketOptions is a no-op off Linux: TCP_USER_TIMEOUT has
// no portable equivalent, and SO_REUSEADDR is meaningless for an
// outbound client connection on BSD/Darwin/Windows.
func applyPlatformSocketOptions(_ *net.TCPConn, _ *options) {}
