//go:build linux

package events

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// inotifyBackend watches a directory for IN_CLOSE_WRITE. The descriptor is
// non-blocking and wrapped in an *os.File so the runtime poller parks the
// reader and Close wakes it.
type inotifyBackend struct {
	file *os.File
	once sync.Once
}

func openInotify(dir string) (watchBackend, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}
	if _, err := unix.InotifyAddWatch(fd, dir, unix.IN_CLOSE_WRITE); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &inotifyBackend{file: os.NewFile(uintptr(fd), "inotify")}, nil
}

func (b *inotifyBackend) run(emit func(name string)) error {
	buf := make([]byte, 64*(unix.SizeofInotifyEvent+unix.NAME_MAX+1))
	for {
		n, err := b.file.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read inotify events: %w", err)
		}
		if gone := decodeInotify(buf[:n], emit); gone {
			return errors.New("watched directory was removed")
		}
	}
}

// decodeInotify walks one read batch. It reports true when the kernel dropped
// the watch.
func decodeInotify(batch []byte, emit func(name string)) bool {
	for offset := 0; offset+unix.SizeofInotifyEvent <= len(batch); {
		mask := binary.NativeEndian.Uint32(batch[offset+4:])
		nameLen := int(binary.NativeEndian.Uint32(batch[offset+12:]))
		start := offset + unix.SizeofInotifyEvent
		end := min(start+nameLen, len(batch))
		name := trimNUL(batch[start:end])
		offset = end

		switch {
		case mask&unix.IN_IGNORED != 0:
			return true
		case mask&unix.IN_Q_OVERFLOW != 0:
			emit("")
		case mask&unix.IN_CLOSE_WRITE != 0:
			emit(name)
		}
	}
	return false
}

func trimNUL(raw []byte) string {
	for i, c := range raw {
		if c == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

func (b *inotifyBackend) Close() error {
	var err error
	b.once.Do(func() { err = b.file.Close() })
	return err
}
