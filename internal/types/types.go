// Package types holds the identifiers shared by the configuration layer and
// the connection tasks built from it.
package types

import "strconv"

// HostName is the network name or address of a monitored database host.
type HostName string

// PointName identifies a logical monitoring point on a host, usually the
// Oracle instance or service name.
type PointName string

// Port is a TCP port.
type Port uint16

func (h HostName) String() string { return string(h) }

func (p PointName) String() string { return string(p) }

func (p Port) String() string { return strconv.Itoa(int(p)) }
