package gopam

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the error taxonomy. All of them are fatal to the
// command that produced them; the executor additionally performs
// compensating actions around BuildFailed/RemoveFailed before propagating.
type Kind int

const (
	KindUnknown Kind = iota
	KindUninitialized
	KindAlreadyInitialized
	KindUnknownPackage
	KindUnknownVariable
	KindUnknownRepo
	KindNotInstalled
	KindAlreadyInstalled
	KindInconsistentManifest
	KindInconsistentRepo
	KindConfigMismatch
	KindUnresolvedRequire
	KindBuildFailed
	KindRemoveFailed
	KindSolverNoSolution
	KindNameCollision
)

func (k Kind) String() string {
	switch k {
	case KindUninitialized:
		return "Uninitialized"
	case KindAlreadyInitialized:
		return "AlreadyInitialized"
	case KindUnknownPackage:
		return "UnknownPackage"
	case KindUnknownVariable:
		return "UnknownVariable"
	case KindUnknownRepo:
		return "UnknownRepo"
	case KindNotInstalled:
		return "NotInstalled"
	case KindAlreadyInstalled:
		return "AlreadyInstalled"
	case KindInconsistentManifest:
		return "InconsistentManifest"
	case KindInconsistentRepo:
		return "InconsistentRepo"
	case KindConfigMismatch:
		return "ConfigMismatch"
	case KindUnresolvedRequire:
		return "UnresolvedRequire"
	case KindBuildFailed:
		return "BuildFailed"
	case KindRemoveFailed:
		return "RemoveFailed"
	case KindSolverNoSolution:
		return "SolverNoSolution"
	case KindNameCollision:
		return "NameCollision"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried by every failure gopam reports.
// It wraps an optional cause (inspectable via errors.Cause/errors.Unwrap)
// and keeps the taxonomy Kind alongside the packages/files it concerns.
type Error struct {
	Kind Kind
	Msg  string
	Subj string // the NV, package name, repo name, or file path involved
	Err  error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Subj != "" {
		s += fmt.Sprintf("(%s)", e.Subj)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, subj, msg string, cause error) error {
	return &Error{Kind: k, Subj: subj, Msg: msg, Err: cause}
}

func errUninitialized(root string) error {
	return newErr(KindUninitialized, root, "root does not exist; run `gopam init` first", nil)
}

func errAlreadyInitialized(root string) error {
	return newErr(KindAlreadyInitialized, root, "root already initialized", nil)
}

func errUnknownPackage(name PkgName) error {
	return newErr(KindUnknownPackage, string(name), "", nil)
}

func errUnknownVariable(v FullVariable) error {
	return newErr(KindUnknownVariable, v.String(), "", nil)
}

func errUnknownRepo(n RepoName) error {
	return newErr(KindUnknownRepo, string(n), "", nil)
}

func errNotInstalled(name PkgName) error {
	return newErr(KindNotInstalled, string(name), "", nil)
}

func errAlreadyInstalled(nv NV) error {
	return newErr(KindAlreadyInstalled, nv.String(), "", nil)
}

func errInconsistentManifest(file string, nv NV) error {
	return newErr(KindInconsistentManifest, file, fmt.Sprintf("declared name.version does not match %s", nv), nil)
}

func errInconsistentRepo(nv NV, dep PkgName) error {
	return newErr(KindInconsistentRepo, nv.String(), fmt.Sprintf("dependency %q is not in Available", dep), nil)
}

func errConfigMismatch(section Section) error {
	return newErr(KindConfigMismatch, string(section), "manifest and build-config sections disagree", nil)
}

func errUnresolvedRequire(section Section) error {
	return newErr(KindUnresolvedRequire, string(section), "not defined locally nor by a direct dependency", nil)
}

func errBuildFailed(nv NV, exitCode int, cause error) error {
	return newErr(KindBuildFailed, nv.String(), fmt.Sprintf("build exited %d", exitCode), cause)
}

func errRemoveFailed(nv NV, cause error) error {
	return newErr(KindRemoveFailed, nv.String(), "remove script failed", cause)
}

func errSolverNoSolution() error {
	return newErr(KindSolverNoSolution, "", "the solver found no solution for this request", nil)
}

func errNameCollision(section Section) error {
	return newErr(KindNameCollision, string(section), "exported by more than one package in the closure", nil)
}

// IsKind reports whether err (or a cause wrapped by errors.Wrap) is a
// gopam *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		err = errors.Unwrap(err)
	}
	return e != nil && e.Kind == k
}
