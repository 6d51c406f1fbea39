package sip

import (
	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/header"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/uri"
)

// Proto is the only protocol version the package speaks.
const Proto = "SIP/2.0"

// RequestMethod represents a SIP request method.
// See [types.RequestMethod].
type RequestMethod = types.RequestMethod

// Request method constants.
const (
	RequestMethodAck       = types.RequestMethodAck
	RequestMethodBye       = types.RequestMethodBye
	RequestMethodCancel    = types.RequestMethodCancel
	RequestMethodInfo      = types.RequestMethodInfo
	RequestMethodInvite    = types.RequestMethodInvite
	RequestMethodMessage   = types.RequestMethodMessage
	RequestMethodNotify    = types.RequestMethodNotify
	RequestMethodOptions   = types.RequestMethodOptions
	RequestMethodPrack     = types.RequestMethodPrack
	RequestMethodPublish   = types.RequestMethodPublish
	RequestMethodRefer     = types.RequestMethodRefer
	RequestMethodRegister  = types.RequestMethodRegister
	RequestMethodSubscribe = types.RequestMethodSubscribe
	RequestMethodUpdate    = types.RequestMethodUpdate
)

// ResponseStatus represents a SIP response status code.
// See [types.ResponseStatus].
type ResponseStatus = types.ResponseStatus

// ResponseReason represents a SIP response reason phrase.
type ResponseReason = types.ResponseReason

// Response status constants.
const (
	ResponseStatusTrying                = types.ResponseStatusTrying
	ResponseStatusRinging               = types.ResponseStatusRinging
	ResponseStatusCallIsBeingForwarded  = types.ResponseStatusCallIsBeingForwarded
	ResponseStatusQueued                = types.ResponseStatusQueued
	ResponseStatusSessionProgress       = types.ResponseStatusSessionProgress
	ResponseStatusEarlyDialogTerminated = types.ResponseStatusEarlyDialogTerminated

	ResponseStatusOK               = types.ResponseStatusOK
	ResponseStatusAccepted         = types.ResponseStatusAccepted
	ResponseStatusNonAuthoritative = types.ResponseStatusNonAuthoritative
	ResponseStatusNoNotification   = types.ResponseStatusNoNotification

	ResponseStatusMultipleChoices    = types.ResponseStatusMultipleChoices
	ResponseStatusMovedPermanently   = types.ResponseStatusMovedPermanently
	ResponseStatusMovedTemporarily   = types.ResponseStatusMovedTemporarily
	ResponseStatusUseProxy           = types.ResponseStatusUseProxy
	ResponseStatusAlternativeService = types.ResponseStatusAlternativeService

	ResponseStatusBadRequest                   = types.ResponseStatusBadRequest
	ResponseStatusUnauthorized                 = types.ResponseStatusUnauthorized
	ResponseStatusPaymentRequired              = types.ResponseStatusPaymentRequired
	ResponseStatusForbidden                    = types.ResponseStatusForbidden
	ResponseStatusNotFound                     = types.ResponseStatusNotFound
	ResponseStatusMethodNotAllowed             = types.ResponseStatusMethodNotAllowed
	ResponseStatusNotAcceptable                = types.ResponseStatusNotAcceptable
	ResponseStatusProxyAuthenticationRequired  = types.ResponseStatusProxyAuthenticationRequired
	ResponseStatusRequestTimeout               = types.ResponseStatusRequestTimeout
	ResponseStatusConflict                     = types.ResponseStatusConflict
	ResponseStatusGone                         = types.ResponseStatusGone
	ResponseStatusLengthRequired               = types.ResponseStatusLengthRequired
	ResponseStatusConditionalRequestFailed     = types.ResponseStatusConditionalRequestFailed
	ResponseStatusRequestEntityTooLarge        = types.ResponseStatusRequestEntityTooLarge
	ResponseStatusRequestURITooLong            = types.ResponseStatusRequestURITooLong
	ResponseStatusUnsupportedMediaType         = types.ResponseStatusUnsupportedMediaType
	ResponseStatusUnsupportedURIScheme         = types.ResponseStatusUnsupportedURIScheme
	ResponseStatusUnknownResourcePriority      = types.ResponseStatusUnknownResourcePriority
	ResponseStatusBadExtension                 = types.ResponseStatusBadExtension
	ResponseStatusExtensionRequired            = types.ResponseStatusExtensionRequired
	ResponseStatusSessionIntervalTooSmall      = types.ResponseStatusSessionIntervalTooSmall
	ResponseStatusIntervalTooBrief             = types.ResponseStatusIntervalTooBrief
	ResponseStatusBadLocationInformation       = types.ResponseStatusBadLocationInformation
	ResponseStatusUseIdentityHeader            = types.ResponseStatusUseIdentityHeader
	ResponseStatusProvideReferrerIdentity      = types.ResponseStatusProvideReferrerIdentity
	ResponseStatusFlowFailed                   = types.ResponseStatusFlowFailed
	ResponseStatusAnonymityDisallowed          = types.ResponseStatusAnonymityDisallowed
	ResponseStatusBadIdentityInfo              = types.ResponseStatusBadIdentityInfo
	ResponseStatusUnsupportedCertificate       = types.ResponseStatusUnsupportedCertificate
	ResponseStatusInvalidIdentityHeader        = types.ResponseStatusInvalidIdentityHeader
	ResponseStatusFirstHopLacksOutboundSupport = types.ResponseStatusFirstHopLacksOutboundSupport
	ResponseStatusMaxBreadthExceeded           = types.ResponseStatusMaxBreadthExceeded
	ResponseStatusConsentNeeded                = types.ResponseStatusConsentNeeded
	ResponseStatusTemporarilyUnavailable       = types.ResponseStatusTemporarilyUnavailable
	ResponseStatusCallTransactionDoesNotExist  = types.ResponseStatusCallTransactionDoesNotExist
	ResponseStatusLoopDetected                 = types.ResponseStatusLoopDetected
	ResponseStatusTooManyHops                  = types.ResponseStatusTooManyHops
	ResponseStatusAddressIncomplete            = types.ResponseStatusAddressIncomplete
	ResponseStatusAmbiguous                    = types.ResponseStatusAmbiguous
	ResponseStatusBusyHere                     = types.ResponseStatusBusyHere
	ResponseStatusRequestTerminated            = types.ResponseStatusRequestTerminated
	ResponseStatusNotAcceptableHere            = types.ResponseStatusNotAcceptableHere
	ResponseStatusBadEvent                     = types.ResponseStatusBadEvent
	ResponseStatusRequestPending               = types.ResponseStatusRequestPending
	ResponseStatusUndecipherable               = types.ResponseStatusUndecipherable
	ResponseStatusSecurityAgreementRequired    = types.ResponseStatusSecurityAgreementRequired

	ResponseStatusServerInternalError = types.ResponseStatusServerInternalError
	ResponseStatusNotImplemented      = types.ResponseStatusNotImplemented
	ResponseStatusBadGateway          = types.ResponseStatusBadGateway
	ResponseStatusServiceUnavailable  = types.ResponseStatusServiceUnavailable
	ResponseStatusGatewayTimeout      = types.ResponseStatusGatewayTimeout
	ResponseStatusVersionNotSupported = types.ResponseStatusVersionNotSupported
	ResponseStatusMessageTooLarge     = types.ResponseStatusMessageTooLarge
	ResponseStatusPreconditionFailure = types.ResponseStatusPreconditionFailure

	ResponseStatusBusyEverywhere       = types.ResponseStatusBusyEverywhere
	ResponseStatusDecline              = types.ResponseStatusDecline
	ResponseStatusDoesNotExistAnywhere = types.ResponseStatusDoesNotExistAnywhere
	ResponseStatusNotAcceptable606     = types.ResponseStatusNotAcceptable606
	ResponseStatusUnwanted             = types.ResponseStatusUnwanted
	ResponseStatusRejected             = types.ResponseStatusRejected
	ResponseStatusDialogTerminated     = types.ResponseStatusDialogTerminated
)

// RenderOptions controls message rendering.
// See [types.RenderOptions].
type RenderOptions = types.RenderOptions

// URI represents a Request-URI.
// See [uri.URI].
type URI = uri.URI

// ParseURI parses a URI.
// See [uri.Parse].
func ParseURI[T ~string | ~[]byte](s T) (*URI, error) { return errtrace.Wrap2(uri.Parse(s)) }

// Header represents a generic SIP header.
// See [header.Header].
type Header = header.Header

// HeaderName represents a SIP header name.
// See [header.Name].
type HeaderName = header.Name

// CanonicHeaderName returns a canonicalized header name.
// See [header.CanonicName].
func CanonicHeaderName[T ~string](name T) HeaderName { return header.CanonicName(name) }
