package compile

import (
	"strings"

	"github.com/arthur-debert/bcforge/pkg/errors"
)

// EmitLLVM is inserted after the targeted compiler.
const EmitLLVM = "-emit-llvm"

// Compilers maps the compilers found in recorded commands to the ones that
// produce bitcode.
type Compilers struct {
	OriginalCXX string
	OriginalCC  string
	TargetedCXX string
	TargetedCC  string
}

// Invocation is a rewritten compile command.
type Invocation struct {
	// Output is the object path the original command wrote.
	Output string
	// StorePath is where the bitcode for Output is written instead.
	StorePath string
	Name      string
	Args      []string
}

// String renders the full rewritten command line.
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Name}, inv.Args...), " ")
}

// Rewrite converts a recorded compile command. Tokens are split on ASCII
// whitespace. The operand of every -o is replaced with its store path and the
// last one becomes the unit's output.
func (s *Stage) Rewrite(command string) (Invocation, error) {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return Invocation{}, errors.New(errors.ErrCompile, "empty compile command")
	}

	out := make([]string, 0, len(tokens)+1)
	var inv Invocation
	afterO := false
	for _, tok := range tokens {
		switch {
		case afterO:
			inv.Output = tok
			inv.StorePath = s.store.ObjectPath(tok)
			out = append(out, inv.StorePath)
			afterO = false
			continue
		case tok == s.compilers.OriginalCXX:
			out = append(out, s.compilers.TargetedCXX, EmitLLVM)
		case tok == s.compilers.OriginalCC:
			out = append(out, s.compilers.TargetedCC, EmitLLVM)
		default:
			out = append(out, tok)
		}
		if tok == "-o" {
			afterO = true
		}
	}

	if afterO {
		return Invocation{}, errors.Newf(errors.ErrCompile, "-o without an operand in %q", command)
	}
	if inv.Output == "" {
		return Invocation{}, errors.Newf(errors.ErrCompile, "no -o output in %q", command)
	}

	inv.Name = out[0]
	inv.Args = out[1:]
	return inv, nil
}
