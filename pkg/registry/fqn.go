package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFQN reports a component name that is not namespace.Name[@version].
var ErrInvalidFQN = errors.New("registry: invalid fully-qualified name")

// FQN is a parsed fully-qualified component name.
type FQN struct {
	Namespace string
	Name      string
	Version   string
}

// ParseFQN parses "namespace.ComponentName" with an optional "@version"
// suffix. The namespace may itself contain dots; the last segment is the
// component name.
func ParseFQN(raw string) (FQN, error) {
	trimmed := strings.TrimSpace(raw)
	name, version, _ := strings.Cut(trimmed, "@")
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return FQN{}, fmt.Errorf("%w: %q", ErrInvalidFQN, raw)
	}
	if strings.Contains(trimmed, "@") && strings.TrimSpace(version) == "" {
		return FQN{}, fmt.Errorf("%w: %q has an empty version", ErrInvalidFQN, raw)
	}
	return FQN{
		Namespace: name[:idx],
		Name:      name[idx+1:],
		Version:   strings.TrimSpace(version),
	}, nil
}

// IsFQN reports whether raw looks like a fully-qualified name rather than a
// local registry key.
func IsFQN(raw string) bool {
	_, err := ParseFQN(raw)
	return err == nil
}

// Key returns namespace.Name without the version.
func (f FQN) Key() string {
	return f.Namespace + "." + f.Name
}

func (f FQN) String() string {
	if f.Version == "" {
		return f.Key()
	}
	return f.Key() + "@" + f.Version
}

// compareVersions orders dotted versions numerically where possible
// ("1.10" > "1.9"), falling back to string comparison per segment.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for idx := 0; idx < len(as) || idx < len(bs); idx++ {
		var left, right string
		if idx < len(as) {
			left = as[idx]
		}
		if idx < len(bs) {
			right = bs[idx]
		}
		ln, lerr := strconv.Atoi(strings.TrimPrefix(left, "v"))
		rn, rerr := strconv.Atoi(strings.TrimPrefix(right, "v"))
		switch {
		case lerr == nil && rerr == nil:
			if ln != rn {
				if ln < rn {
					return -1
				}
				return 1
			}
		case left != right:
			if left < right {
				return -1
			}
			return 1
		}
	}
	return 0
}
