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

package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tree_MinAndExpired(t *testing.T) {
	tr := New()
	base := time.Now()

	tr.Push("a", base.Add(300*time.Millisecond))
	tr.Push("b", base.Add(100*time.Millisecond))
	tr.Push("c", base.Add(200*time.Millisecond))
	require.Equal(t, 3, tr.Len())

	owner, when, ok := tr.Min()
	require.True(t, ok)
	assert.Equal(t, "b", owner)
	assert.True(t, when.Before(base.Add(300 * time.Millisecond)))

	expired := tr.Expired(base.Add(250 * time.Millisecond))
	assert.Equal(t, []interface{}{"b", "c"}, expired)
	assert.Equal(t, 1, tr.Len())
}

func Test_Tree_RemoveAndReplace(t *testing.T) {
	tr := New()
	base := time.Now()
	tr.Push("a", base.Add(time.Second))
	tr.Push("a", base.Add(2*time.Second))
	require.Equal(t, 1, tr.Len())

	tr.Remove("a")
	assert.Equal(t, 0, tr.Len())
	_, _, ok := tr.Min()
	assert.False(t, ok)
}
