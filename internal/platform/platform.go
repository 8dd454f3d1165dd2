// Package platform describes target platforms for materialization:
// word size, resource limits, and clock speed. Presets cover the
// hosted Linux targets and one embedded board; anything else loads
// from a YAML descriptor.
package platform

import "fmt"

// ResourceConstraints bounds what a materialized graph may consume.
type ResourceConstraints struct {
	// Available flash/ROM in bytes.
	FlashBytes uint64 `yaml:"flash_bytes"`
	// Available RAM in bytes.
	RAMBytes uint64 `yaml:"ram_bytes"`
	// Maximum stack size in bytes, if constrained.
	StackBytes *uint64 `yaml:"stack_bytes,omitempty"`
	// Clock frequency in Hz, if known.
	CPUHz uint64 `yaml:"cpu_hz,omitempty"`
}

// Platform is a target description used by layout estimation and
// resource fitting.
type Platform struct {
	// Platform name, e.g. "stm32f407-discovery".
	Name string `yaml:"name"`
	// Target triple, e.g. "x86_64-unknown-linux-gnu".
	Triple string `yaml:"triple"`
	// Native word size in bytes.
	WordBytes int `yaml:"word_bytes"`
	// Resource limits.
	Constraints ResourceConstraints `yaml:"constraints"`
}

func uint64Ptr(v uint64) *uint64 { return &v }

// GenericLinuxX8664 is a hosted 64-bit Linux target with generous
// limits.
func GenericLinuxX8664() Platform {
	return Platform{
		Name:      "linux-x86_64",
		Triple:    "x86_64-unknown-linux-gnu",
		WordBytes: 8,
		Constraints: ResourceConstraints{
			FlashBytes: 256 * 1024 * 1024,
			RAMBytes:   4 * 1024 * 1024 * 1024,
			StackBytes: uint64Ptr(8 * 1024 * 1024),
			CPUHz:      3_000_000_000,
		},
	}
}

// GenericLinuxAarch64 is a hosted 64-bit ARM Linux target.
func GenericLinuxAarch64() Platform {
	return Platform{
		Name:      "linux-aarch64",
		Triple:    "aarch64-unknown-linux-gnu",
		WordBytes: 8,
		Constraints: ResourceConstraints{
			FlashBytes: 256 * 1024 * 1024,
			RAMBytes:   4 * 1024 * 1024 * 1024,
			StackBytes: uint64Ptr(8 * 1024 * 1024),
			CPUHz:      2_400_000_000,
		},
	}
}

// STM32F407Discovery is the STM32F407 Discovery board: 1 MiB flash,
// 192 KiB SRAM plus 64 KiB CCM RAM.
func STM32F407Discovery() Platform {
	return Platform{
		Name:      "stm32f407-discovery",
		Triple:    "thumbv7em-none-eabihf",
		WordBytes: 4,
		Constraints: ResourceConstraints{
			FlashBytes: 1024 * 1024,
			RAMBytes:   192*1024 + 64*1024,
			StackBytes: uint64Ptr(64 * 1024),
			CPUHz:      168_000_000,
		},
	}
}

// ByName resolves a preset platform by name.
func ByName(name string) (Platform, bool) {
	switch name {
	case "linux-x86_64":
		return GenericLinuxX8664(), true
	case "linux-aarch64":
		return GenericLinuxAarch64(), true
	case "stm32f407-discovery":
		return STM32F407Discovery(), true
	default:
		return Platform{}, false
	}
}

// Names lists the preset platform names.
func Names() []string {
	return []string{"linux-x86_64", "linux-aarch64", "stm32f407-discovery"}
}

// Validate checks a platform descriptor for the fields the pipeline
// relies on.
func (p Platform) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("platform has no name")
	}
	switch p.WordBytes {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("platform %s: word size %d bytes is not a power of two between 1 and 16", p.Name, p.WordBytes)
	}
	if p.Constraints.FlashBytes == 0 {
		return fmt.Errorf("platform %s: flash_bytes must be positive", p.Name)
	}
	if p.Constraints.RAMBytes == 0 {
		return fmt.Errorf("platform %s: ram_bytes must be positive", p.Name)
	}
	if p.Constraints.StackBytes != nil && *p.Constraints.StackBytes == 0 {
		return fmt.Errorf("platform %s: stack_bytes must be positive when set", p.Name)
	}
	return nil
}
