package inject

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorList_Attach(t *testing.T) {
	t.Parallel()

	t.Run("zero value is empty", func(t *testing.T) {
		t.Parallel()

		var l ErrorList
		assert.False(t, l.HasErrors())
		assert.Empty(t, l.ErrorMessages())
		assert.Equal(t, "", l.FormatMessages())
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		t.Parallel()

		var l ErrorList
		l.Attach(errors.New("first"))
		l.AttachMessages("second", "third")
		l.Attach(nil)

		assert.True(t, l.HasErrors())
		assert.Equal(t, 3, l.Len())
		assert.Equal(t, []string{"first", "second", "third"}, l.ErrorMessages())
	})

	t.Run("messages are a copy", func(t *testing.T) {
		t.Parallel()

		var l ErrorList
		l.AttachMessages("original")
		msgs := l.ErrorMessages()
		msgs[0] = "changed"

		assert.Equal(t, []string{"original"}, l.ErrorMessages())
	})

	t.Run("errors keep their causes", func(t *testing.T) {
		t.Parallel()

		var l ErrorList
		l.Attach(BindingError{Key: KeyOf[*TService](), Cause: errTest})
		l.AttachMessages("plain")

		errs := l.Errors()
		require.Len(t, errs, 2)
		assert.ErrorIs(t, errs[0], errTest)
		assert.EqualError(t, errs[1], "plain")
	})
}

func TestErrorList_AttachAll(t *testing.T) {
	t.Parallel()

	t.Run("appends in order without deduplication", func(t *testing.T) {
		t.Parallel()

		var a, b ErrorList
		a.AttachMessages("a1")
		b.AttachMessages("a1", "b2")

		a.AttachAll(&b)
		assert.Equal(t, []string{"a1", "a1", "b2"}, a.ErrorMessages())
		assert.Equal(t, []string{"a1", "b2"}, b.ErrorMessages())
	})

	t.Run("self append doubles the list", func(t *testing.T) {
		t.Parallel()

		var l ErrorList
		l.AttachMessages("x", "y")
		l.AttachAll(&l)
		assert.Equal(t, []string{"x", "y", "x", "y"}, l.ErrorMessages())
	})

	t.Run("foreign collectors contribute messages", func(t *testing.T) {
		t.Parallel()

		var l ErrorList
		l.AttachAll(stubAttachable{"one", "two"})
		l.AttachAll(nil)
		assert.Equal(t, []string{"one", "two"}, l.ErrorMessages())
	})
}

func TestErrorList_FormatMessages(t *testing.T) {
	t.Parallel()

	var l ErrorList
	l.AttachMessages("no binding for *Database", "no binding for Cache")

	assert.Equal(t, "1) no binding for *Database\n\n2) no binding for Cache", l.FormatMessages())
}

func TestErrorList_CauseChain(t *testing.T) {
	t.Parallel()

	root := errors.New("connection refused")
	wrapped := fmt.Errorf("dial db: %w", root)

	var l ErrorList
	l.Attach(ModuleError{Module: "storage", Cause: opaqueError{wrapped}})

	msg := l.ErrorMessages()[0]
	assert.Contains(t, msg, `module "storage": opaque`)
	assert.Contains(t, msg, "caused by: dial db: connection refused")
	assert.NotContains(t, msg, "caused by: connection refused")
}

type stubAttachable []string

func (s stubAttachable) Attach(...error) {}
func (s stubAttachable) AttachMessages(...string) {}
func (s stubAttachable) AttachAll(ErrorAttachable) {}
func (s stubAttachable) HasErrors() bool { return len(s) > 0 }
func (s stubAttachable) ErrorMessages() []string { return []string(s) }
func (s stubAttachable) FormatMessages() string { return formatMessages(s) }

// opaqueError hides the text of its cause.
type opaqueError struct{ cause error }

func (e opaqueError) Error() string { return "opaque" }
func (e opaqueError) Unwrap() error { return e.cause }
