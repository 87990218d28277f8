package scanner

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"etcfiles/blueprint"
	"etcfiles/logger"

	"github.com/h2non/filetype"
)

const (
	// Content Ubuntu's fuse package once installed without registering it.
	legacyFuseContent = "user_allow_other\n"

	upstartJobTarget   = "/lib/init/upstart-job"
	alternativesPrefix = "/etc/alternatives/"
)

type skipReason string

const (
	skipNone        skipReason = ""
	skipUnreadable  skipReason = "unreadable"
	skipManagedLink skipReason = "managed_link"
)

// isLegacyFuseDefault matches the one fuse.conf that dpkg does not know.
func isLegacyFuseDefault(root, path string, content []byte) bool {
	return path == filepath.Join(root, "fuse.conf") && string(content) == legacyFuseContent
}

// buildRecord turns an accepted file into a blueprint record. content is
// what readContent returned for the path.
func (s *Scanner) buildRecord(e dirEntry, content []byte) (blueprint.FileRecord, skipReason) {
	st, err := lstatRaw(e.path)
	if err != nil {
		logger.Debugf("Failed to lstat %s: %v", e.path, err)
		return blueprint.FileRecord{}, skipUnreadable
	}

	var record blueprint.FileRecord
	if e.isSymlink() {
		target, err := os.Readlink(e.path)
		if err != nil {
			logger.Debugf("Failed to read link %s: %v", e.path, err)
			return blueprint.FileRecord{}, skipUnreadable
		}
		if target == upstartJobTarget || strings.HasPrefix(target, alternativesPrefix) {
			logger.Debugf("Skipping managed link %s -> %s", e.path, target)
			return blueprint.FileRecord{}, skipManagedLink
		}
		record.Content = target
		record.Encoding = blueprint.EncodingPlain
	} else {
		record.Content, record.Encoding = encodeContent(content)
		if record.Encoding == blueprint.EncodingBase64 {
			logger.Debugf("Encoding %s as base64 (%s)", e.path, describeBinary(content))
		}
	}

	record.Owner = s.idents.owner(st.uid)
	record.Group = s.idents.group(st.gid)
	record.Mode = strconv.FormatUint(uint64(st.mode), 8)
	return record, skipNone
}

func encodeContent(content []byte) (string, blueprint.Encoding) {
	if utf8.Valid(content) {
		return string(content), blueprint.EncodingPlain
	}
	return base64.StdEncoding.EncodeToString(content), blueprint.EncodingBase64
}

func describeBinary(content []byte) string {
	kind, err := filetype.Match(content)
	if err != nil || kind == filetype.Unknown || kind.MIME.Value == "" {
		return "unknown type"
	}
	return kind.MIME.Value
}
