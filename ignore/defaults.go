package ignore

// DefaultPatterns are excluded unless a user rule negates them. Patterns
// with a slash are anchored at the scanned root, so "/fstab" means
// <root>/fstab.
var DefaultPatterns = []string{
	"*.dpkg-*",
	"/.git",
	"/.pwd.lock",
	"/alternatives",
	"/apparmor",
	"/apparmor.d",
	"/ca-certificates.conf",
	"/dpkg/origins/default",
	"/fstab",
	"/group-",
	"/group",
	"/gshadow-",
	"/gshadow",
	"/hostname",
	"/init.d/.legacy-bootordering",
	"/initramfs-tools/conf.d/resume",
	"/ld.so.cache",
	"/localtime",
	"/mailcap",
	"/mtab",
	"/modules",
	"/motd",
	"/network/interfaces",
	"/passwd-",
	"/passwd",
	"/popularity-contest.conf",
	"/resolv.conf",
	"/rc0.d",
	"/rc1.d",
	"/rc2.d",
	"/rc3.d",
	"/rc4.d",
	"/rc5.d",
	"/rc6.d",
	"/rcS.d",
	"/shadow-",
	"/shadow",
	"/ssl/certs",
	"/timezone",
	"/udev/rules.d/70-persistent-*.rules",
}

// DefaultRules returns the built-in exclusion rules in order.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(DefaultPatterns))
	for _, pattern := range DefaultPatterns {
		rules = append(rules, Rule{Pattern: pattern})
	}
	return rules
}
