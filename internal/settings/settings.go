// Package settings holds the handful of choices that change how the rest
// of the compiler core behaves without changing what it computes: which
// reference backend emits code, and how many workers internal/lower may
// run lowering on. It has no file format or environment-variable binding
// of its own — cmd/hashc's flags populate a Settings value directly, the
// same narrow, explicit-struct way target.DataLayout is built and passed
// down rather than read from ambient global state.
package settings

import "fmt"

// CodeGenBackend names which reference backend internal/backend/*
// implementation a driver should route compiled bodies through. It is a
// closed, named enum (like target.Integer/target.Endian) rather than a
// type parameter: the choice is a runtime flag (`hashc emit --backend=`),
// not a compile-time one, so there is nothing for a generic parameter to
// buy here.
type CodeGenBackend int

const (
	// BackendLLVM routes through internal/backend/llvmgen, producing an
	// *ir.Module (github.com/llir/llvm) ready for llc/opt.
	BackendLLVM CodeGenBackend = iota
	// BackendNative routes through internal/backend/nativegen, producing
	// a relocatable ELF object directly via arch/amd64 + format/elf.
	BackendNative
)

func (b CodeGenBackend) String() string {
	switch b {
	case BackendLLVM:
		return "llvm"
	case BackendNative:
		return "native"
	default:
		return fmt.Sprintf("CodeGenBackend(%d)", int(b))
	}
}

// ParseCodeGenBackend parses the --backend flag value cmd/hashc accepts.
func ParseCodeGenBackend(s string) (CodeGenBackend, error) {
	switch s {
	case "llvm":
		return BackendLLVM, nil
	case "native":
		return BackendNative, nil
	default:
		return 0, fmt.Errorf("settings: unknown backend %q (want \"llvm\" or \"native\")", s)
	}
}

// Settings is the full set of knobs cmd/hashc's subcommands thread
// through to internal/lower and the reference backends. The zero value
// equals Default(): BackendLLVM, LowerWorkers 0 (internal/lower.LowerAll
// then picks its own worker count), and an empty OutputPath (stdout).
type Settings struct {
	// Backend selects which internal/backend/* implementation emits code.
	Backend CodeGenBackend

	// LowerWorkers bounds internal/lower.LowerAll's worker pool. <= 0
	// means "let LowerAll pick runtime.GOMAXPROCS(0)".
	LowerWorkers int

	// OutputPath is where emitted output (an .ll file or a .o file,
	// depending on Backend) is written; empty means stdout.
	OutputPath string
}

// Default returns the settings cmd/hashc starts from before flags
// override anything.
func Default() Settings {
	return Settings{Backend: BackendLLVM, LowerWorkers: 0}
}
