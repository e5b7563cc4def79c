package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
	"github.com/aveekpatra/Domain-AI/internal/registrar"
	"github.com/aveekpatra/Domain-AI/internal/security"
	"github.com/aveekpatra/Domain-AI/internal/store"
)

// ScreenReport is the verdict of the prompt analyzer with the rules that
// fired.
type ScreenReport struct {
	Prompt string          `json:"prompt"`
	Result security.Result `json:"result"`
	Hits   []security.Hit  `json:"hits"`
}

func (r ScreenReport) Title() string {
	return fmt.Sprintf("risk=%s secure=%t confidence=%.2f", r.Result.Risk, r.Result.IsSecure, r.Result.Confidence)
}

func (r ScreenReport) Header() table.Row { return table.Row{"Rule", "Violation"} }

func (r ScreenReport) Rows() []table.Row {
	rows := make([]table.Row, 0, len(r.Hits))
	for _, hit := range r.Hits {
		for _, v := range hit.Violations {
			rows = append(rows, table.Row{hit.Rule, v})
		}
	}
	return rows
}

func (r ScreenReport) Footer() table.Row {
	if len(r.Hits) == 0 {
		return table.Row{"", "no rules fired"}
	}
	return nil
}

// CheckReport is a registrar lookup with a brandability score per domain.
type CheckReport struct {
	Variant string     `json:"variant"`
	Results []CheckRow `json:"results"`
}

// CheckRow is one domain in a CheckReport.
type CheckRow struct {
	Domain       string                  `json:"domain"`
	Brandability int                     `json:"brandability"`
	Availability *registrar.Availability `json:"availability,omitempty"`
}

func (r CheckReport) Title() string {
	return fmt.Sprintf("%s (%s)", registrar.DisplayName, r.Variant)
}

func (r CheckReport) Header() table.Row {
	return table.Row{"Domain", "Status", "Price", "Premium", "Brandability"}
}

func (r CheckReport) Rows() []table.Row {
	rows := make([]table.Row, 0, len(r.Results))
	for _, res := range r.Results {
		status, price, premium := "unknown", "-", "-"
		if a := res.Availability; a != nil {
			if a.Available != nil {
				status = "taken"
				if *a.Available {
					status = "available"
				}
			}
			if a.RegisterPrice != nil {
				price = fmt.Sprintf("$%.2f", *a.RegisterPrice)
			}
			if a.Premium != nil && *a.Premium {
				premium = "yes"
			}
		}
		rows = append(rows, table.Row{res.Domain, status, price, premium, res.Brandability})
	}
	return rows
}

func (r CheckReport) Footer() table.Row {
	available := 0
	for _, res := range r.Results {
		if res.Availability != nil && res.Availability.Available != nil && *res.Availability.Available {
			available++
		}
	}
	return table.Row{"", fmt.Sprintf("%d/%d available", available, len(r.Results)), "", "", ""}
}

// BucketReport lists stored AI-tier buckets.
type BucketReport struct {
	Entries []store.BucketEntry `json:"entries"`
}

func (r BucketReport) Title() string { return "AI rate-limit buckets" }

func (r BucketReport) Header() table.Row {
	return table.Row{"Client", "Operation", "Minute", "Hour", "Day", "Violations", "Cost", "Day reset"}
}

func (r BucketReport) Rows() []table.Row {
	rows := make([]table.Row, 0, len(r.Entries))
	for _, e := range r.Entries {
		client, op := splitBucketKey(e.Key)
		b := e.Bucket
		rows = append(rows, table.Row{
			client, op,
			b.MinuteCount, b.HourCount, b.DayCount,
			b.Violations, b.TotalCost,
			b.DayReset.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func (r BucketReport) Footer() table.Row {
	if len(r.Entries) == 0 {
		return table.Row{"(no stored buckets)", "", "", "", "", "", "", ""}
	}
	return nil
}

// splitBucketKey reverses ratelimit.Key. IPv6 addresses contain colons, so
// the operation is taken from the last segment.
func splitBucketKey(key string) (client, op string) {
	rest := strings.TrimPrefix(key, "ai:")
	idx := strings.LastIndex(rest, ":")
	if idx < 0 {
		return rest, ""
	}
	return rest[:idx], rest[idx+1:]
}

// OperationReport is the effective AI-tier operation table.
type OperationReport struct {
	Operations map[ratelimit.Operation]ratelimit.OperationConfig `json:"operations"`
}

func (r OperationReport) Title() string { return "AI operations" }

func (r OperationReport) Header() table.Row {
	return table.Row{"Operation", "Per minute", "Per hour", "Per day", "Cost weight"}
}

func (r OperationReport) Rows() []table.Row {
	ops := ratelimit.SortedOperations(r.Operations)
	rows := make([]table.Row, 0, len(ops))
	for _, op := range ops {
		cfg := r.Operations[op]
		rows = append(rows, table.Row{string(op), cfg.PerMinute, cfg.PerHour, cfg.PerDay, cfg.CostWeight})
	}
	return rows
}

func (r OperationReport) Footer() table.Row { return nil }
