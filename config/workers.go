// Copyright 2026, Square, Inc.

package config

import (
	"strconv"
	"strings"

	"github.com/square/kuyruk/errors"
)

// QueueWorkers is the number of worker processes to run for a queue.
type QueueWorkers struct {
	Queue string
	Count int
}

// ParseWorkers decodes a WORKERS expression like "a, 2*b": comma separated
// tokens, each a queue name or "N*queue" with N a positive integer. Empty
// tokens are skipped, and a queue listed more than once gets the sum of its
// counts at the position of its first occurrence.
func ParseWorkers(expr string) ([]QueueWorkers, error) {
	workers := []QueueWorkers{}
	index := map[string]int{}
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		count := 1
		queue := token
		if i := strings.Index(token, "*"); i != -1 {
			n, err := strconv.Atoi(strings.TrimSpace(token[:i]))
			if err != nil || n < 1 {
				return nil, errors.InvalidWorkers{Expr: expr, Token: token}
			}
			count = n
			queue = strings.TrimSpace(token[i+1:])
		}
		if queue == "" || strings.Contains(queue, "*") {
			return nil, errors.InvalidWorkers{Expr: expr, Token: token}
		}

		if i, ok := index[queue]; ok {
			workers[i].Count += count
			continue
		}
		index[queue] = len(workers)
		workers = append(workers, QueueWorkers{Queue: queue, Count: count})
	}
	return workers, nil
}

// QueuesFor returns the queues and process counts for hostname. A host with
// no WORKERS entry runs one worker for DefaultQueue. It fails if WORKERS is
// not a dict of strings.
func (c *Config) QueuesFor(hostname string) ([]QueueWorkers, error) {
	if err := c.Check("WORKERS"); err != nil {
		return nil, err
	}
	expr, ok := c.Workers[hostname]
	if !ok {
		return []QueueWorkers{{Queue: DefaultQueue, Count: 1}}, nil
	}
	return ParseWorkers(expr)
}

// WorkerCount returns the total number of worker processes for hostname.
func (c *Config) WorkerCount(hostname string) (int, error) {
	queues, err := c.QueuesFor(hostname)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, q := range queues {
		n += q.Count
	}
	return n, nil
}
