package discord

import "strconv"

// Identifiable is anything that carries a Discord id, such as a channel or
// thread object decoded from the gateway.
type Identifiable interface {
	GetID() string
}

// Target names the channel a message goes to: either a handle exposing an
// id or a raw id. The zero value resolves to the empty string.
type Target struct {
	handle Identifiable
	raw    string
}

// FromHandle targets the channel behind h.
func FromHandle(h Identifiable) Target {
	return Target{handle: h}
}

// RawID targets a channel by its string id.
func RawID(id string) Target {
	return Target{raw: id}
}

// Snowflake targets a channel by its numeric id.
func Snowflake(id uint64) Target {
	return Target{raw: strconv.FormatUint(id, 10)}
}

// ID resolves t to the id used in the request path. A handle takes
// precedence over a raw id.
func (t Target) ID() string {
	if t.handle != nil {
		return t.handle.GetID()
	}
	return t.raw
}

func (t Target) String() string { return t.ID() }
