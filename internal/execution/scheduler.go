package execution

import "ath/internal/registry"

// Scheduler distributes tests across workers
type Scheduler interface {
	Schedule(tests []registry.TestCase, workerCount int) [][]registry.TestCase
}

// RoundRobinScheduler distributes tests evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes tests evenly across workers using round-robin
func (s *RoundRobinScheduler) Schedule(tests []registry.TestCase, workerCount int) [][]registry.TestCase {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]registry.TestCase, workerCount)
	for i := range distribution {
		distribution[i] = make([]registry.TestCase, 0)
	}

	for i, test := range tests {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], test)
	}

	return distribution
}
