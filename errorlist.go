package inject

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrorAttachable is implemented by anything that collects errors during a
// resolution attempt. Collectors never report by themselves: the component
// that owns a complete attempt decides when the collected errors become a
// failure.
type ErrorAttachable interface {
	// Attach records each error, keeping the error value as the cause.
	Attach(errs ...error)

	// AttachMessages records plain messages.
	AttachMessages(messages ...string)

	// AttachAll appends every record of other, in order.
	AttachAll(other ErrorAttachable)

	// HasErrors reports whether anything has been attached.
	HasErrors() bool

	// ErrorMessages returns a copy of the attached messages in insertion order.
	ErrorMessages() []string

	// FormatMessages renders one numbered entry per attached record.
	FormatMessages() string
}

// ErrorList is the standard ErrorAttachable. The zero value is ready to use.
// An ErrorList is owned by a single resolution request and is not safe for
// concurrent use.
type ErrorList struct {
	records []errorRecord
}

var _ ErrorAttachable = (*ErrorList)(nil)

type errorRecord struct {
	message string
	cause   error // nil for plain messages
}

// Attach records each non-nil error, keeping it as the cause of its message.
func (l *ErrorList) Attach(errs ...error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		l.records = append(l.records, errorRecord{message: describeError(err), cause: err})
	}
}

// AttachMessages records plain messages that have no underlying error.
func (l *ErrorList) AttachMessages(messages ...string) {
	for _, m := range messages {
		l.records = append(l.records, errorRecord{message: m})
	}
}

// AttachAll copies every record of other into l. Records from another
// ErrorList keep their causes; any other ErrorAttachable contributes its
// messages only.
func (l *ErrorList) AttachAll(other ErrorAttachable) {
	if other == nil {
		return
	}

	if o, ok := other.(*ErrorList); ok {
		if o == l {
			l.records = append(l.records, slices.Clone(o.records)...)
			return
		}
		l.records = append(l.records, o.records...)
		return
	}

	l.AttachMessages(other.ErrorMessages()...)
}

// HasErrors reports whether anything has been attached.
func (l *ErrorList) HasErrors() bool {
	return len(l.records) > 0
}

// Len returns the number of attached records.
func (l *ErrorList) Len() int {
	return len(l.records)
}

// ErrorMessages returns the message of every record in attachment order.
func (l *ErrorList) ErrorMessages() []string {
	messages := make([]string, len(l.records))
	for i, r := range l.records {
		messages[i] = r.message
	}
	return messages
}

// Errors returns the attached errors. Plain messages are returned as errors
// carrying the message text.
func (l *ErrorList) Errors() []error {
	errs := make([]error, len(l.records))
	for i, r := range l.records {
		if r.cause != nil {
			errs[i] = r.cause
		} else {
			errs[i] = errors.New(r.message)
		}
	}
	return errs
}

// FormatMessages renders the messages as a numbered list.
func (l *ErrorList) FormatMessages() string {
	return formatMessages(l.ErrorMessages())
}

// formatMessages renders numbered entries separated by blank lines:
//
//	1) no binding for *Database
//
//	2) no binding for Cache
func formatMessages(messages []string) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("%d) %s", i+1, m))
	}
	return b.String()
}

// describeError renders an error with its cause chain. Wrapped causes whose
// text is already part of the outer message are not repeated.
func describeError(err error) string {
	msg := err.Error()

	var b strings.Builder
	b.WriteString(msg)

	seen := msg
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		text := cause.Error()
		if strings.Contains(seen, text) {
			continue
		}
		b.WriteString("\n  caused by: ")
		b.WriteString(text)
		seen += text
	}

	return b.String()
}
