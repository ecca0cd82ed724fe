package configs

// Engine holds tunables for the allocation engine.
type Engine struct {
	// DecisionQueueSize is the buffer size of the decision logger's queue.
	// When the buffer is full, further decisions are dropped (and counted)
	// rather than blocking the resolver.
	DecisionQueueSize int `env:"DECISION_QUEUE_SIZE" envDefault:"256"`
}
