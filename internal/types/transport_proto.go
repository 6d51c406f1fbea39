package types

import (
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// Well-known transport protocols.
const (
	TransportProtoUDP  TransportProto = "UDP"
	TransportProtoTCP  TransportProto = "TCP"
	TransportProtoTLS  TransportProto = "TLS"
	TransportProtoSCTP TransportProto = "SCTP"
	TransportProtoWS   TransportProto = "WS"
	TransportProtoWSS  TransportProto = "WSS"
)

// TransportProto is a transport token as it appears in Via headers.
type TransportProto string

func (p TransportProto) ToUpper() TransportProto { return util.UCase(p) }

func (p TransportProto) IsValid() bool { return grammar.IsToken(p) }

func (p TransportProto) Equal(val any) bool {
	var other TransportProto
	switch v := val.(type) {
	case TransportProto:
		other = v
	case *TransportProto:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return util.EqFold(p, other)
}
