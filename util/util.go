package util

import (
	"errors"
	"os"

	"github.com/afjoseph/commongo/print"
	"github.com/anacrolix/torrent/metainfo"
)

var ERR_DECODE_FILE = errors.New("ERR_DECODE_FILE")

func DecodeTorrentFile(filePath string) (*metainfo.MetaInfo, error) {
	print.DebugFunc()
	mi, err := metainfo.LoadFromFile(filePath)
	if err != nil {
		return nil, print.ErrorWrapf(ERR_DECODE_FILE, err.Error())
	}
	return mi, nil
}

// FilledByteSlice returns 'size' bytes, all equal to 'val'
func FilledByteSlice(size int, val byte) []byte {
	b := make([]byte, size)
	if size == 0 || val == 0 {
		return b
	}
	// Double the filled prefix until the slice is covered
	b[0] = val
	for filled := 1; filled < size; filled *= 2 {
		copy(b[filled:], b[:filled])
	}
	return b
}

func IsFile(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !fileInfo.IsDir()
}

func IsDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func MkdirTempOrPanic(dir, pattern string) string {
	tmpdir, err := os.MkdirTemp(dir, pattern)
	if err != nil {
		panic(err)
	}
	return tmpdir
}

func MkdirAllOrPanic(dir string) {
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		panic(err)
	}
}

func IntSliceHas(haystack []int, needle int) bool {
	for _, k := range haystack {
		if needle == k {
			return true
		}
	}
	return false
}
