//go:build unix

package scanner

import (
	"os/user"
	"strconv"

	"etcfiles/blueprint"

	"golang.org/x/sys/unix"
)

// rawStat is the part of lstat(2) that ends up in a record.
type rawStat struct {
	mode uint32
	uid  uint32
	gid  uint32
}

func lstatRaw(path string) (rawStat, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return rawStat{}, err
	}
	return rawStat{mode: uint32(st.Mode), uid: st.Uid, gid: st.Gid}, nil
}

// identCache memoizes uid and gid lookups for the duration of one scan.
type identCache struct {
	users  map[uint32]blueprint.Ident
	groups map[uint32]blueprint.Ident
}

func newIdentCache() *identCache {
	return &identCache{
		users:  make(map[uint32]blueprint.Ident),
		groups: make(map[uint32]blueprint.Ident),
	}
}

func (c *identCache) owner(uid uint32) blueprint.Ident {
	if id, ok := c.users[uid]; ok {
		return id
	}
	id := blueprint.Numeric(uid)
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil {
		id = blueprint.Named(u.Username)
	}
	c.users[uid] = id
	return id
}

func (c *identCache) group(gid uint32) blueprint.Ident {
	if id, ok := c.groups[gid]; ok {
		return id
	}
	id := blueprint.Numeric(gid)
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10)); err == nil {
		id = blueprint.Named(g.Name)
	}
	c.groups[gid] = id
	return id
}
