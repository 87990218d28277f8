// Package blueprint holds the path-keyed snapshot that the file scanner
// writes into. Serialization lives in the output package.
package blueprint

import (
	"encoding/json"
	"strconv"
	"sync"
)

type Encoding string

const (
	EncodingPlain  Encoding = "plain"
	EncodingBase64 Encoding = "base64"
)

// Ident is a user or group that resolved either to a name or, when the
// lookup failed, to its raw numeric id.
type Ident struct {
	Name  string
	ID    uint32
	named bool
}

func Named(name string) Ident {
	return Ident{Name: name, named: true}
}

func Numeric(id uint32) Ident {
	return Ident{ID: id}
}

func (i Ident) IsNamed() bool { return i.named }

func (i Ident) String() string {
	if i.named {
		return i.Name
	}
	return strconv.FormatUint(uint64(i.ID), 10)
}

func (i Ident) MarshalJSON() ([]byte, error) {
	if i.named {
		return json.Marshal(i.Name)
	}
	return json.Marshal(i.ID)
}

func (i *Ident) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*i = Named(name)
		return nil
	}
	var id uint32
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*i = Numeric(id)
	return nil
}

// FileRecord is one accepted configuration file.
type FileRecord struct {
	Path     string   `json:"-"`
	Content  string   `json:"content"`
	Encoding Encoding `json:"encoding"`
	Owner    Ident    `json:"owner"`
	Group    Ident    `json:"group"`
	Mode     string   `json:"mode"`
}

// Sink is what the scanner needs from a blueprint.
type Sink interface {
	AddFile(path string, record FileRecord)
}

type Host struct {
	Arch            string `json:"arch,omitempty"`
	Hostname        string `json:"hostname,omitempty"`
	OS              string `json:"os,omitempty"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
}

type Blueprint struct {
	mu    sync.Mutex
	Host  *Host                 `json:"host,omitempty"`
	Files map[string]FileRecord `json:"files"`
}

func New() *Blueprint {
	return &Blueprint{Files: make(map[string]FileRecord)}
}

func (b *Blueprint) AddFile(path string, record FileRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	record.Path = path
	b.Files[path] = record
}

// Len reports the number of recorded files.
func (b *Blueprint) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Files)
}

// Snapshot returns a copy of the file map safe to read while scanning continues.
func (b *Blueprint) Snapshot() map[string]FileRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]FileRecord, len(b.Files))
	for k, v := range b.Files {
		out[k] = v
	}
	return out
}
