package gopam

import (
	"os"
	"path/filepath"
	"strings"
)

// buildEnv composes the process environment a build or remove command runs
// under: start from the compiler description's declared EnvOps ("=", "+="
// and "=+") applied in order over the ambient environment, then prepend
// the current switch's bin dir to PATH last, so it always wins.
func (s *State) buildEnv(cd *CompilerDescr) ([]string, error) {
	env := os.Environ()

	for _, op := range cd.Env {
		val, err := s.SubstString(op.Value)
		if err != nil {
			return nil, err
		}
		env = applyEnvOp(env, op.Name, op.Op, val)
	}
	env = prependPath(env, s.Paths.BinDir(s.CurrentAlias))
	return env, nil
}

func prependPath(env []string, dir string) []string {
	const key = "PATH="
	for i, kv := range env {
		if strings.HasPrefix(kv, key) {
			env[i] = key + dir + string(filepath.ListSeparator) + strings.TrimPrefix(kv, key)
			return env
		}
	}
	return append(env, key+dir)
}

func applyEnvOp(env []string, name, op, value string) []string {
	key := name + "="
	idx := -1
	var cur string
	for i, kv := range env {
		if strings.HasPrefix(kv, key) {
			idx = i
			cur = strings.TrimPrefix(kv, key)
			break
		}
	}

	var next string
	switch op {
	case "+=":
		if cur == "" {
			next = value
		} else {
			next = value + string(filepath.ListSeparator) + cur
		}
	case "=+":
		if cur == "" {
			next = value
		} else {
			next = cur + string(filepath.ListSeparator) + value
		}
	default: // "="
		next = value
	}

	if idx >= 0 {
		env[idx] = key + next
		return env
	}
	return append(env, key+next)
}
