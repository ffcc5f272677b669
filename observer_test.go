/*
 * observer_test.go, part of xmol.
 *
 * Copyright 2024 The xmol authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package xmol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	calls int
}

func TestObservableAddRemove(Te *testing.T) {
	var O Observable[*counter]
	a, b := &counter{}, &counter{}
	O.AddObserver(a)
	O.AddObserver(b)
	assert.Equal(Te, 2, O.Len())
	assert.Panics(Te, func() { O.AddObserver(a) })
	O.RemoveObserver(a)
	assert.Panics(Te, func() { O.RemoveObserver(a) })
	assert.Panics(Te, func() { O.MarkAsDeleted(a) })
	s, ok := O.State(b)
	assert.True(Te, ok)
	assert.Equal(Te, ObserverActive, s)
}

func TestObservableNotify(Te *testing.T) {
	var O Observable[*counter]
	a, b := &counter{}, &counter{}
	O.AddObserver(a)
	O.AddObserver(b)
	inc := func(c *counter) { c.calls++ }
	require.NoError(Te, O.Notify(NotifyAny, inc))
	assert.Equal(Te, 1, a.calls)
	assert.Equal(Te, 1, b.calls)

	O.MarkAsDeleted(a)
	err := O.Notify(NotifyAny, inc)
	var dead *DeadObserverAccessError
	require.True(Te, errors.As(err, &dead))
	assert.Equal(Te, a, dead.Observer)
	//nobody is called when the check fails
	assert.Equal(Te, 1, b.calls)

	require.NoError(Te, O.Notify(NotifyAliveOnly, inc))
	assert.Equal(Te, 1, a.calls)
	assert.Equal(Te, 2, b.calls)
}

func TestObservableMove(Te *testing.T) {
	var O Observable[*counter]
	a, b := &counter{}, &counter{}
	O.AddObserver(a)
	O.MarkAsDeleted(a)
	O.MoveObserver(a, b)
	_, ok := O.State(a)
	assert.False(Te, ok)
	s, ok := O.State(b)
	assert.True(Te, ok)
	assert.Equal(Te, ObserverActive, s)
	assert.Panics(Te, func() { O.MoveObserver(a, b) })
}

func TestObservableNotifyMayRemove(Te *testing.T) {
	var O Observable[*counter]
	cs := []*counter{{}, {}, {}}
	for _, c := range cs {
		O.AddObserver(c)
	}
	require.NoError(Te, O.Notify(NotifyAny, func(c *counter) {
		c.calls++
		O.RemoveObserver(c)
	}))
	assert.Equal(Te, 0, O.Len())
	for _, c := range cs {
		assert.Equal(Te, 1, c.calls)
	}
}
