package apierr

// User-facing messages.
const (
	UserMsgUnreachable  = "Unable to reach the server. Check your connection."
	UserMsgInvalidData  = "Invalid data."
	UserMsgUnauthorized = "You are not authorized to perform this action."
	UserMsgForbidden    = "Access forbidden."
	UserMsgNotFound     = "Resource not found."
	UserMsgConflict     = "Conflict: the resource already exists."
	UserMsgInternal     = "Internal server error."
	UserMsgUnexpected   = "An unexpected error occurred."
)

// UserMessage maps an error to the text shown to the user. It depends only
// on the status code and, for 400 and 409, on the server payload.
func UserMessage(e *Error) string {
	if e == nil {
		return UserMsgUnexpected
	}

	switch e.Status {
	case 0:
		return UserMsgUnreachable
	case 400:
		return payloadMessage(e, UserMsgInvalidData)
	case 401:
		return UserMsgUnauthorized
	case 403:
		return UserMsgForbidden
	case 404:
		return UserMsgNotFound
	case 409:
		return payloadMessage(e, UserMsgConflict)
	case 500:
		return UserMsgInternal
	default:
		if e.Message != "" {
			return e.Message
		}
		return UserMsgUnexpected
	}
}

// UserMessageOf returns the user-facing text for any error. Errors that did
// not come from the API are shown as-is.
func UserMessageOf(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := As(err); ok {
		return UserMessage(apiErr)
	}
	return err.Error()
}

func payloadMessage(e *Error, fallback string) string {
	if e.Payload != nil && e.Payload.Message != "" {
		return e.Payload.Message
	}
	return fallback
}
