// Package jobs models the worker behaviour graph of a building: each job
// names a step and links to the job that follows on success and on failure.
// Graphs may loop back on themselves.
package jobs

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrJobNotFound = errors.New("job not found")

// Job is one step of a worker's behaviour. A nil successor is the terminal
// marker.
type Job interface {
	Name() string
	NextSuccess() Job
	NextFailure() Job
}

// Node is the concrete Job built by definition sources.
type Node struct {
	name    string
	success *Node
	failure *Node
}

func NewNode(name string) *Node { return &Node{name: name} }

// Link sets both successors. It is only called while a graph is being
// assembled; graphs are read-only once handed to a catalog.
func (n *Node) Link(success, failure *Node) {
	n.success = success
	n.failure = failure
}

func (n *Node) Name() string { return n.name }

func (n *Node) NextSuccess() Job {
	if n.success == nil {
		return nil
	}
	return n.success
}

func (n *Node) NextFailure() Job {
	if n.failure == nil {
		return nil
	}
	return n.failure
}

// FindByName searches the graph reachable from start breadth-first, failure
// edge before success edge. Every job name is expanded at most once, so
// cyclic graphs terminate. If two distinct jobs share a name the first one
// dequeued is returned.
func FindByName(start Job, name string) (Job, error) {
	var found Job
	walk(start, func(j Job) bool {
		if j.Name() == name {
			found = j
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	return found, nil
}

// Reachable returns the distinct-by-name jobs reachable from start in the
// order FindByName would visit them.
func Reachable(start Job) []Job {
	var out []Job
	walk(start, func(j Job) bool {
		out = append(out, j)
		return true
	})
	return out
}

// DuplicateNames reports names carried by more than one distinct job
// reachable from start. Jobs of comparable dynamic type are told apart by
// identity; any other job is keyed by its name, so duplicates among those
// cannot be seen.
func DuplicateNames(start Job) []string {
	if isNil(start) {
		return nil
	}
	seen := map[any]bool{identity(start): true}
	owners := map[string]any{}
	var dups []string
	queue := []Job{start}
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		id := identity(j)
		if prev, ok := owners[j.Name()]; ok && prev != id {
			if !contains(dups, j.Name()) {
				dups = append(dups, j.Name())
			}
		} else {
			owners[j.Name()] = id
		}
		for _, next := range []Job{j.NextFailure(), j.NextSuccess()} {
			if isNil(next) {
				continue
			}
			nid := identity(next)
			if seen[nid] {
				continue
			}
			seen[nid] = true
			queue = append(queue, next)
		}
	}
	return dups
}

type nameKey string

// identity returns a map key for j.
func identity(j Job) any {
	if reflect.TypeOf(j).Comparable() {
		return j
	}
	return nameKey(j.Name())
}

func walk(start Job, visit func(Job) bool) {
	if isNil(start) {
		return
	}
	visited := map[string]struct{}{}
	queue := []Job{start}
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		if _, ok := visited[j.Name()]; ok {
			continue
		}
		if !visit(j) {
			return
		}
		visited[j.Name()] = struct{}{}
		for _, next := range []Job{j.NextFailure(), j.NextSuccess()} {
			if !isNil(next) {
				queue = append(queue, next)
			}
		}
	}
}

func isNil(j Job) bool {
	if j == nil {
		return true
	}
	n, ok := j.(*Node)
	return ok && n == nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
