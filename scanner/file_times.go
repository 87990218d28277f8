package scanner

import (
	"os"

	"github.com/djherbis/times"
)

var fileChangeTime = changeTime

// changeTime returns the inode change time of an lstat result in
// nanoseconds. Platforms without ctime report false.
func changeTime(info os.FileInfo) (int64, bool) {
	ts := times.Get(info)
	if !ts.HasChangeTime() {
		return 0, false
	}
	return ts.ChangeTime().UnixNano(), true
}
