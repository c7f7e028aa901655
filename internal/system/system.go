package system

import (
	"fmt"
	"log"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryShare is the fraction of currently available memory that holding
// resident bytes would take.
type MemoryShare struct {
	Resident  uint64
	Available uint64
}

func (m MemoryShare) Fraction() float64 {
	if m.Available == 0 {
		return 0
	}
	return float64(m.Resident) / float64(m.Available)
}

// CheckMemory compares resident against the memory the OS reports as
// available and logs a warning above half of it.
func CheckMemory(resident uint64) (MemoryShare, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemoryShare{Resident: resident}, fmt.Errorf("read memory stats: %w", err)
	}
	share := MemoryShare{Resident: resident, Available: vm.Available}
	if share.Fraction() > 0.5 {
		log.Printf("[!] Decoded frames use %s of %s available memory", HumanBytes(resident), HumanBytes(vm.Available))
	}
	return share, nil
}

func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
