package system

import (
	"fmt"
	"log"
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// memPerWorkerBytes is a rough upper bound of what one export worker holds
// in flight (events, blocks and the sampled camera path).
const memPerWorkerBytes = 256 << 20

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// RenderWorkers picks the worker count for batch processing: the physical
// core count, shrunk when available memory would not sustain it.
func RenderWorkers() int {
	workers, err := cpu.Counts(false)
	if err != nil || workers < 1 {
		workers = runtime.NumCPU()
	}

	vm, err := mem.VirtualMemory()
	if err == nil {
		byMem := int(vm.Available / memPerWorkerBytes)
		if byMem < 1 {
			byMem = 1
		}
		if byMem < workers {
			fmt.Printf("[!] Мало свободной памяти (%.1f GB), потоки ограничены до %d\n",
				float64(vm.Available)/(1<<30), byMem)
			workers = byMem
		}
	}

	if workers < 1 {
		workers = 1
	}
	return workers
}
