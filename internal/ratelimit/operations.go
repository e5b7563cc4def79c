package ratelimit

import (
	"fmt"
	"sort"
)

// Operation identifies a metered upstream operation.
type Operation string

const (
	OpDomainsGenerate Operation = "domains-generate"
	OpPromptImprove   Operation = "prompt-improve"
	OpDomainsValidate Operation = "domains-validate"
)

// OperationConfig holds the caps for one operation.
type OperationConfig struct {
	PerMinute  int `mapstructure:"per_minute" json:"perMinute"`
	PerHour    int `mapstructure:"per_hour" json:"perHour"`
	PerDay     int `mapstructure:"per_day" json:"perDay"`
	CostWeight int `mapstructure:"cost_weight" json:"costWeight"`
}

// DefaultOperations is the built-in operation table.
var DefaultOperations = map[Operation]OperationConfig{
	OpDomainsGenerate: {PerMinute: 3, PerHour: 20, PerDay: 100, CostWeight: 10},
	OpPromptImprove:   {PerMinute: 5, PerHour: 30, PerDay: 150, CostWeight: 5},
	OpDomainsValidate: {PerMinute: 10, PerHour: 100, PerDay: 500, CostWeight: 1},
}

// UnknownOperationError is returned for operations missing from the table.
type UnknownOperationError struct {
	Operation Operation
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown AI operation: %s", e.Operation)
}

// MergeOperations overlays overrides on DefaultOperations. Zero fields in an
// override keep the default value.
func MergeOperations(overrides map[string]OperationConfig) map[Operation]OperationConfig {
	out := make(map[Operation]OperationConfig, len(DefaultOperations)+len(overrides))
	for op, cfg := range DefaultOperations {
		out[op] = cfg
	}
	for name, o := range overrides {
		op := Operation(name)
		cfg := out[op]
		if o.PerMinute > 0 {
			cfg.PerMinute = o.PerMinute
		}
		if o.PerHour > 0 {
			cfg.PerHour = o.PerHour
		}
		if o.PerDay > 0 {
			cfg.PerDay = o.PerDay
		}
		if o.CostWeight > 0 {
			cfg.CostWeight = o.CostWeight
		}
		out[op] = cfg
	}
	return out
}

// SortedOperations lists the operations of a table in name order.
func SortedOperations(table map[Operation]OperationConfig) []Operation {
	ops := make([]Operation, 0, len(table))
	for op := range table {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
