package materialize

import (
	"fmt"
	"strings"

	"github.com/torclang/torc/internal/platform"
)

// ResourceUsage is the consumption of a single resource.
type ResourceUsage struct {
	// Resource name: "flash", "ram", "stack".
	Name string
	// Bytes used and available.
	Used      uint64
	Available uint64
	// Usage as a percentage.
	Percent float64
}

func (u ResourceUsage) String() string {
	return fmt.Sprintf("%s: %d/%d bytes (%.1f%%)", u.Name, u.Used, u.Available, u.Percent)
}

// ResourceReport is the complete resource fitting result for one
// target.
type ResourceReport struct {
	// Flash holds code plus static data.
	Flash ResourceUsage
	// RAM holds the peak stack estimate.
	RAM ResourceUsage
	// Stack is set when the platform constrains stack size.
	Stack *ResourceUsage
	// AllFit is true when nothing overflows.
	AllFit bool
	// Violations describe each overflow.
	Violations []string
}

func (r ResourceReport) String() string {
	var b strings.Builder
	b.WriteString("=== Resource Report ===\n")
	fmt.Fprintf(&b, "  %s\n", r.Flash)
	fmt.Fprintf(&b, "  %s\n", r.RAM)
	if r.Stack != nil {
		fmt.Fprintf(&b, "  %s\n", *r.Stack)
	}
	if r.AllFit {
		b.WriteString("  Status: ALL FIT\n")
	} else {
		b.WriteString("  Status: VIOLATIONS\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "    - %s\n", v)
		}
	}
	return b.String()
}

// FormatCompact renders the report as single-line usage entries for
// embedding in summaries.
func (r ResourceReport) FormatCompact() string {
	var b strings.Builder
	b.WriteString("Resources:\n")
	fmt.Fprintf(&b, "  Flash: %d/%d bytes (%.1f%%)\n", r.Flash.Used, r.Flash.Available, r.Flash.Percent)
	fmt.Fprintf(&b, "  RAM: %d/%d bytes (%.1f%%)", r.RAM.Used, r.RAM.Available, r.RAM.Percent)
	if r.Stack != nil {
		fmt.Fprintf(&b, "\n  Stack: %d/%d bytes (%.1f%%)", r.Stack.Used, r.Stack.Available, r.Stack.Percent)
	}
	return b.String()
}

// CheckResourceFit compares an estimated layout against a platform's
// resource constraints.
func CheckResourceFit(layout *MemoryLayout, target platform.Platform) ResourceReport {
	constraints := target.Constraints
	var violations []string

	flashUsed := layout.EstimatedCodeBytes + layout.StaticDataBytes
	if flashUsed > constraints.FlashBytes {
		violations = append(violations, fmt.Sprintf(
			"flash overflow: need %d bytes, have %d bytes", flashUsed, constraints.FlashBytes))
	}

	ramUsed := layout.PeakStackBytes
	if ramUsed > constraints.RAMBytes {
		violations = append(violations, fmt.Sprintf(
			"RAM overflow: need %d bytes, have %d bytes", ramUsed, constraints.RAMBytes))
	}

	var stack *ResourceUsage
	if constraints.StackBytes != nil {
		limit := *constraints.StackBytes
		if ramUsed > limit {
			violations = append(violations, fmt.Sprintf(
				"stack overflow: need %d bytes, limit %d bytes", ramUsed, limit))
		}
		stack = &ResourceUsage{
			Name:      "stack",
			Used:      ramUsed,
			Available: limit,
			Percent:   percent(ramUsed, limit),
		}
	}

	return ResourceReport{
		Flash: ResourceUsage{
			Name:      "flash",
			Used:      flashUsed,
			Available: constraints.FlashBytes,
			Percent:   percent(flashUsed, constraints.FlashBytes),
		},
		RAM: ResourceUsage{
			Name:      "ram",
			Used:      ramUsed,
			Available: constraints.RAMBytes,
			Percent:   percent(ramUsed, constraints.RAMBytes),
		},
		Stack:      stack,
		AllFit:     len(violations) == 0,
		Violations: violations,
	}
}

// RequireFit converts resource violations into an error.
func RequireFit(report ResourceReport) error {
	if report.AllFit {
		return nil
	}
	return NewResourceOverflowError(strings.Join(report.Violations, "; "))
}

func percent(used, available uint64) float64 {
	if available == 0 {
		return 0
	}
	return float64(used) / float64(available) * 100
}
