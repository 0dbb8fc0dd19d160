package gopam

import (
	"io/ioutil"
	"regexp"

	"github.com/pkg/errors"
)

// substMarker matches a well-formed %{f}% substitution marker. f is
// captured for parsing as a FullVariable.
var substMarker = regexp.MustCompile(`%\{([^{}%]+)\}%`)

// SubstString replaces every well-formed %{f}% occurrence in s with the
// string form of f's evaluated value (I5: identity outside markers, each
// occurrence replaced exactly once, no re-substitution of the replacement
// text — regexp.ReplaceAllStringFunc never rescans its own output).
func (s *State) SubstString(in string) (string, error) {
	var firstErr error
	out := substMarker.ReplaceAllStringFunc(in, func(match string) string {
		if firstErr != nil {
			return match
		}
		sub := substMarker.FindStringSubmatch(match)
		f, err := ParseFullVariable(sub[1])
		if err != nil {
			firstErr = err
			return match
		}
		v, err := s.EvalVariable(f)
		if err != nil {
			firstErr = err
			return match
		}
		return v.String()
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// SubstStrings substitutes each element of a command-line argument list,
// used before executing build/remove commands.
func (s *State) SubstStrings(args []string) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		v, err := s.SubstString(a)
		if err != nil {
			return nil, errors.Wrapf(err, "substituting argument %q", a)
		}
		out[i] = v
	}
	return out, nil
}

// SubstFile reads base+".in", applies SubstString to its contents, and
// writes the result to base, preserving byte contents outside markers.
func (s *State) SubstFile(base string) error {
	in := base + ".in"
	b, err := ioutil.ReadFile(in)
	if err != nil {
		return errors.Wrapf(err, "reading substitution template %s", in)
	}
	out, err := s.SubstString(string(b))
	if err != nil {
		return errors.Wrapf(err, "substituting %s", in)
	}
	return writeFileAtomic(base, []byte(out))
}
