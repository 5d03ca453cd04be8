package resource

import (
	"fmt"
	"os"
	"strconv"
)

// ParseMode converts an octal mode string such as "2570" or "0640" into an
// os.FileMode, mapping the setuid, setgid and sticky bits.
func ParseMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 07777 {
		return 0, fmt.Errorf("invalid mode %q", s)
	}
	mode := os.FileMode(v & 0777)
	if v&04000 != 0 {
		mode |= os.ModeSetuid
	}
	if v&02000 != 0 {
		mode |= os.ModeSetgid
	}
	if v&01000 != 0 {
		mode |= os.ModeSticky
	}
	return mode, nil
}

// FormatMode is the inverse of ParseMode.
func FormatMode(mode os.FileMode) string {
	v := uint32(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		v |= 04000
	}
	if mode&os.ModeSetgid != 0 {
		v |= 02000
	}
	if mode&os.ModeSticky != 0 {
		v |= 01000
	}
	return fmt.Sprintf("%04o", v)
}
