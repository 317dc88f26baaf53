package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxPathLength matches Linux PATH_MAX
	MaxPathLength = 4096
	// MaxTypeLength is generous; kernel filesystem names are short
	MaxTypeLength = 64
)

// fsTypePattern matches filesystem type names as printed by mount(8),
// including subtypes such as fuse.sshfs and fuse.gvfsd-fuse
var fsTypePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.+-]*$`)

// ValidateMountPath validates a --path argument:
// - Absolute (starts with /)
// - At most PATH_MAX bytes
// - No NUL bytes
func ValidateMountPath(path string) error {
	if path == "" {
		return fmt.Errorf("mount path must not be empty")
	}

	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("mount path %q must be absolute", path)
	}

	if len(path) > MaxPathLength {
		return fmt.Errorf("mount path must be at most %d characters", MaxPathLength)
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("mount path %q contains a NUL byte", path)
	}

	return nil
}

// ValidateFSType validates a --type argument
func ValidateFSType(fsType string) error {
	if fsType == "" {
		return fmt.Errorf("filesystem type must not be empty")
	}

	if len(fsType) > MaxTypeLength {
		return fmt.Errorf("filesystem type must be at most %d characters", MaxTypeLength)
	}

	if !fsTypePattern.MatchString(fsType) {
		return fmt.Errorf("filesystem type %q must start with alphanumeric and contain only alphanumeric, underscore, dot, plus, or hyphen characters", fsType)
	}

	return nil
}
