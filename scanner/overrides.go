package scanner

import (
	"path/filepath"
	"strings"

	"etcfiles/hasher"
	"etcfiles/logger"
)

// OverrideTable lists files whose stock content is known even though dpkg
// does not track it, mostly files a postinst copies out of /usr/share.
// Keys are relative to the scanned root. A value is either a literal md5
// or an absolute path whose current content is the stock content.
type OverrideTable map[string]string

// DefaultOverrides is the compiled-in table.
var DefaultOverrides = OverrideTable{
	"adduser.conf":                      "/usr/share/adduser/adduser.conf",
	"apparmor.d/tunables/home.d/ubuntu": "2a88811f7b763daa96c20b20269294a4",
	"chatscripts/provider":              "/usr/share/ppp/provider.chatscript",
	"default/console-setup":             "0fb6cec686d0410993bdf17192bee7d6",
	"default/grub":                      "ee9df6805efb2a7d1ba3f8016754a119",
	"default/irqbalance":                "7e10d364b9f72b11d7bf7bd1cfaeb0ff",
	"default/locale":                    "164aba1ef1298affaa58761647f2ceba",
	"default/rcS":                       "/usr/share/initscripts/default.rcS",
	"environment":                       "44ad415fac749e0c39d6302a751db3f2",
	"hosts.allow":                       "8c44735847c4f69fb9e1f0d7a32e94c1",
	"hosts.deny":                        "92a0a19db9dc99488f00ac9e7b28eb3d",
	"initramfs-tools/modules":           "/usr/share/initramfs-tools/modules",
	"inputrc":                           "/usr/share/readline/inputrc",
	"iscsi/iscsid.conf":                 "6c6fd718faae84a4ab1b276e78fea471",
	"kernel-img.conf":                   "f1ed9c3e91816337aa7351bdf558a442",
	"ld.so.conf":                        "4317c6de8564b68d628c21efa96b37e4",
	"networks":                          "/usr/share/base-files/networks",
	"nsswitch.conf":                     "/usr/share/base-files/nsswitch.conf",
	"ppp/chap-secrets":                  "faac59e116399eadbb37644de6494cc4",
	"ppp/pap-secrets":                   "698c4d412deedc43dde8641f84e8b2fd",
	"ppp/peers/provider":                "/usr/share/ppp/provider.peer",
	"profile":                           "/usr/share/base-files/profile",
	"python/debian_config":              "7f4739eb8858d231601a5ed144099ac8",
	"rc.local":                          "10fd9f051accb6fd1f753f2d48371890",
	"rsyslog.d/50-default.conf":         "/usr/share/rsyslog/50-default.conf",
	"security/opasswd":                  "d41d8cd98f00b204e9800998ecf8427e",
	"sgml/xml-core.cat":                 "bcd454c9bf55a3816a134f9766f5928f",
	"shells":                            "0e85c87e09d716ecb03624ccff511760",
	"ssh/sshd_config":                   "e24f749808133a27d94fda84a89bb27b",
	"sudoers":                           "02f74ccbec48997f402a063a172abb48",
	"ufw/after.rules":                   "/usr/share/ufw/after.rules",
	"ufw/after6.rules":                  "/usr/share/ufw/after6.rules",
	"ufw/before.rules":                  "/usr/share/ufw/before.rules",
	"ufw/before6.rules":                 "/usr/share/ufw/before6.rules",
	"ufw/ufw.conf":                      "/usr/share/ufw/ufw.conf",
}

// Checksum returns the expected md5 for path under root. Reference files
// that cannot be read yield the table value itself, which never matches.
func (t OverrideTable) Checksum(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	value, ok := t[filepath.ToSlash(rel)]
	if !ok {
		return "", false
	}
	if !strings.HasPrefix(value, "/") {
		return value, true
	}
	sum, err := hasher.File(value)
	if err != nil {
		logger.Debugf("Failed to hash reference %s for %s: %v", value, path, err)
		return value, true
	}
	return sum, true
}
