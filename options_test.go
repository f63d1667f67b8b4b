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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Options_HostAndUnixMutuallyExclusive(t *testing.T) {
	opts := loadOptions(WithHostPort("localhost", 6379), WithUnixPath("/tmp/redis.sock"))
	assert.Equal(t, ErrInvalidEndpoint, opts.validate())
}

func Test_Options_RequiresEndpoint(t *testing.T) {
	opts := loadOptions()
	assert.Equal(t, ErrInvalidEndpoint, opts.validate())
}

func Test_Options_PreferIPVersionMutuallyExclusive(t *testing.T) {
	opts := loadOptions(WithHostPort("localhost", 6379), WithPreferIPv4(), WithPreferIPv6())
	assert.Equal(t, ErrInvalidEndpoint, opts.validate())
}

func Test_Options_CommandTimeoutClamped(t *testing.T) {
	opts := loadOptions(WithHostPort("localhost", 6379), WithCommandTimeout(MaxMillis+1000))
	require.NoError(t, opts.validate())
	assert.Equal(t, MaxMillis, opts.commandTimeoutMillis)
}

func Test_Options_MaxPendingNegativeClampsToZero(t *testing.T) {
	opts := loadOptions(WithHostPort("localhost", 6379), WithMaxPending(-5))
	assert.Equal(t, 0, opts.maxPending)
}

func Test_Options_ReconnectEnablesPolicy(t *testing.T) {
	opts := loadOptions(WithHostPort("localhost", 6379), WithReconnect(0, 3))
	assert.True(t, opts.reconnectEnabled)
	assert.Equal(t, 3, opts.reconnectMaxAttempts)
}
