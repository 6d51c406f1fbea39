package types

import (
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/util"
)

const (
	RequestMethodAck       RequestMethod = "ACK"
	RequestMethodBye       RequestMethod = "BYE"
	RequestMethodCancel    RequestMethod = "CANCEL"
	RequestMethodInfo      RequestMethod = "INFO"
	RequestMethodInvite    RequestMethod = "INVITE"
	RequestMethodMessage   RequestMethod = "MESSAGE"
	RequestMethodNotify    RequestMethod = "NOTIFY"
	RequestMethodOptions   RequestMethod = "OPTIONS"
	RequestMethodPrack     RequestMethod = "PRACK"
	RequestMethodPublish   RequestMethod = "PUBLISH"
	RequestMethodRefer     RequestMethod = "REFER"
	RequestMethodRegister  RequestMethod = "REGISTER"
	RequestMethodSubscribe RequestMethod = "SUBSCRIBE"
	RequestMethodUpdate    RequestMethod = "UPDATE"
)

// RequestMethod is a SIP request method token.
// Method names are case-sensitive (RFC 3261 Section 7.1).
type RequestMethod string

func (m RequestMethod) ToUpper() RequestMethod { return util.UCase(m) }

func (m RequestMethod) IsValid() bool { return grammar.IsToken(m) }

// IsKnown reports whether m is one of the methods defined by RFC 3261 and its extensions.
func (m RequestMethod) IsKnown() bool {
	switch m {
	case RequestMethodAck, RequestMethodBye, RequestMethodCancel, RequestMethodInfo,
		RequestMethodInvite, RequestMethodMessage, RequestMethodNotify, RequestMethodOptions,
		RequestMethodPrack, RequestMethodPublish, RequestMethodRefer, RequestMethodRegister,
		RequestMethodSubscribe, RequestMethodUpdate:
		return true
	}
	return false
}

func (m RequestMethod) Equal(val any) bool {
	var other RequestMethod
	switch v := val.(type) {
	case RequestMethod:
		other = v
	case *RequestMethod:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return m == other
}
