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

package redis

// sentinelError is a plain string error, in the pkg/errors sentinel-var
// style but as exact/prefix-matchable strings since callers may need
// to match on the literal error text.
type sentinelError string

func (e sentinelError) Error() string { return string(e) }

// Public error-string surface. Tests and user code may match on
// these literals directly.
const (
	ErrSkipped       sentinelError = "skipped"
	ErrWaitingTimeout sentinelError = "waiting timeout"
	ErrDisconnected  sentinelError = "disconnected"
	ErrCommandFailed sentinelError = "command failed"
)

const (
	connectErrorPrefix   = "connect error: "
	reconnectErrorPrefix = "reconnect error: "
)

func connectError(cause error) error {
	return sentinelError(connectErrorPrefix + cause.Error())
}

func reconnectError(msg string) error {
	return sentinelError(reconnectErrorPrefix + msg)
}

// ErrNoConnection is returned synchronously by Submit when there is no
// active connection and automatic reconnection is not in progress.
const ErrNoConnection sentinelError = "no connection and reconnect is not in progress"

// ErrEmptyArgs is returned synchronously by Submit for a command with no
// arguments.
const ErrEmptyArgs sentinelError = "command args must not be empty"

// ErrNilCallback is returned synchronously by Submit when cb is nil.
const ErrNilCallback sentinelError = "callback must not be nil"

// ErrAlreadyConnected is returned by Connect/ConnectUnix if the client is
// neither Idle nor ReconnectPending.
const ErrAlreadyConnected sentinelError = "already connecting or connected"

// ErrInvalidEndpoint is returned at construction time for mutually
// exclusive or incomplete endpoint configuration.
const ErrInvalidEndpoint sentinelError = "host and unix path are mutually exclusive, and tls requires host"
