// Package hasher computes the MD5 checksums dpkg records for packaged files.
package hasher

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"sync"
)

const hashBufferSize = 32 * 1024

var hashBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, hashBufferSize)
		return &buf
	},
}

// Sum returns the lowercase hex MD5 of content.
func Sum(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// File returns the lowercase hex MD5 of the file at path, following symlinks.
func File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := md5.New()
	bufferPtr := hashBufferPool.Get().(*[]byte)
	defer hashBufferPool.Put(bufferPtr)
	if _, err := io.CopyBuffer(h, file, *bufferPtr); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
