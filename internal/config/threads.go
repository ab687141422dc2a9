package config

import "runtime"

// ApplyAdaptiveThreads fills a zero thread count. In-process clusters
// share the machine, so each participant gets its share of the CPUs;
// a coordinator or worker process gets all of them.
func ApplyAdaptiveThreads(cfg AppConfig) AppConfig {
	if cfg.Threads == 0 {
		cfg.Threads = EstimateThreads(cfg.Role, cfg.Participants, runtime.NumCPU())
	}
	return cfg
}

// EstimateThreads is the heuristic behind ApplyAdaptiveThreads.
func EstimateThreads(role string, participants, numCPU int) int {
	if role == RoleLocal && participants > 1 {
		return max(1, numCPU/participants)
	}
	return max(1, numCPU)
}
