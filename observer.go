/*
 * observer.go, part of xmol.
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

// ObserverState is the liveness of a registered observer.
type ObserverState int

const (
	ObserverActive ObserverState = iota
	ObserverDeleted
)

// NotifyPolicy tells Notify what to do with observers which are not active.
type NotifyPolicy int

const (
	//NotifyAny requires every registered observer to be active. Finding a
	//deleted one is reported as a *DeadObserverAccessError.
	NotifyAny NotifyPolicy = iota
	//NotifyAliveOnly silently skips deleted observers.
	NotifyAliveOnly
)

// Observable keeps track of the observers registered on a container and
// broadcasts calls to them. Every observer must be added and removed
// exactly once; a mismatch panics.
// The zero value is ready to use.
type Observable[T comparable] struct {
	observers map[T]ObserverState
}

// AddObserver registers obs as active. Panics if obs is already registered.
func (O *Observable[T]) AddObserver(obs T) {
	if O.observers == nil {
		O.observers = make(map[T]ObserverState)
	}
	if _, ok := O.observers[obs]; ok {
		panic(ErrObserverTwice)
	}
	O.observers[obs] = ObserverActive
}

// RemoveObserver forgets obs. Panics if obs is not registered.
func (O *Observable[T]) RemoveObserver(obs T) {
	if _, ok := O.observers[obs]; !ok {
		panic(ErrObserverUnknown)
	}
	delete(O.observers, obs)
}

// MarkAsDeleted keeps obs registered but flags it as deleted, so that a later
// NotifyAny will report it instead of calling into it.
func (O *Observable[T]) MarkAsDeleted(obs T) {
	if _, ok := O.observers[obs]; !ok {
		panic(ErrObserverUnknown)
	}
	O.observers[obs] = ObserverDeleted
}

// MoveObserver replaces from by to. The state of from is not carried over, to is active.
func (O *Observable[T]) MoveObserver(from, to T) {
	O.RemoveObserver(from)
	O.AddObserver(to)
}

// State returns the state of obs and whether it is registered at all.
func (O *Observable[T]) State(obs T) (ObserverState, bool) {
	s, ok := O.observers[obs]
	return s, ok
}

// Len returns the number of registered observers, deleted ones included.
func (O *Observable[T]) Len() int {
	return len(O.observers)
}

// Notify calls f for each active observer. With NotifyAny all the observers
// are checked before the first call, so a dead observer produces an error
// and no observer is called at all.
// Observers may be added or removed by f; those changes only affect later notifications.
func (O *Observable[T]) Notify(policy NotifyPolicy, f func(T)) error {
	targets := make([]T, 0, len(O.observers))
	for obs, state := range O.observers {
		if state != ObserverActive {
			if policy == NotifyAny {
				return &DeadObserverAccessError{Observer: obs}
			}
			continue
		}
		targets = append(targets, obs)
	}
	for _, obs := range targets {
		f(obs)
	}
	return nil
}

// forEach calls f on every registered observer regardless of its state.
func (O *Observable[T]) forEach(f func(T, ObserverState)) {
	for obs, state := range O.observers {
		f(obs, state)
	}
}

// takeFrom moves all the observers of src into O, leaving src empty.
func (O *Observable[T]) takeFrom(src *Observable[T]) {
	O.observers = src.observers
	src.observers = nil
}
