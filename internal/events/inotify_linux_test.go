//go:build linux

package events

import (
	"encoding/binary"
	"slices"
	"testing"

	"golang.org/x/sys/unix"
)

// inotifyRecord encodes one kernel record, padding the name with NULs the way
// the kernel aligns it.
func inotifyRecord(mask uint32, name string) []byte {
	nameLen := 0
	if name != "" {
		nameLen = (len(name)/16 + 1) * 16
	}
	rec := make([]byte, unix.SizeofInotifyEvent+nameLen)
	binary.NativeEndian.PutUint32(rec[0:], 1)
	binary.NativeEndian.PutUint32(rec[4:], mask)
	binary.NativeEndian.PutUint32(rec[12:], uint32(nameLen))
	copy(rec[unix.SizeofInotifyEvent:], name)
	return rec
}

func TestDecodeInotify(t *testing.T) {
	tests := []struct {
		name     string
		batch    [][]byte
		wantEmit []string
		wantGone bool
	}{
		{
			name:     "close write",
			batch:    [][]byte{inotifyRecord(unix.IN_CLOSE_WRITE, "notify")},
			wantEmit: []string{"notify"},
		},
		{
			name: "several records in one read",
			batch: [][]byte{
				inotifyRecord(unix.IN_CLOSE_WRITE, "notify"),
				inotifyRecord(unix.IN_CLOSE_WRITE, "a-much-longer-marker-name"),
			},
			wantEmit: []string{"notify", "a-much-longer-marker-name"},
		},
		{
			name:     "queue overflow emits an unnamed event",
			batch:    [][]byte{inotifyRecord(unix.IN_Q_OVERFLOW, "")},
			wantEmit: []string{""},
		},
		{
			name: "watch removed stops decoding",
			batch: [][]byte{
				inotifyRecord(unix.IN_CLOSE_WRITE, "notify"),
				inotifyRecord(unix.IN_IGNORED, ""),
				inotifyRecord(unix.IN_CLOSE_WRITE, "after"),
			},
			wantEmit: []string{"notify"},
			wantGone: true,
		},
		{
			name:  "other masks are skipped",
			batch: [][]byte{inotifyRecord(unix.IN_OPEN, "notify")},
		},
		{
			name:  "truncated header is ignored",
			batch: [][]byte{make([]byte, unix.SizeofInotifyEvent-1)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			gone := decodeInotify(slices.Concat(tc.batch...), func(name string) {
				got = append(got, name)
			})
			if gone != tc.wantGone {
				t.Fatalf("gone = %v, want %v", gone, tc.wantGone)
			}
			if !slices.Equal(got, tc.wantEmit) {
				t.Fatalf("emitted %q, want %q", got, tc.wantEmit)
			}
		})
	}
}
