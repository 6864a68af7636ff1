package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	closed     bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return nil }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestNATSNotifierPublish(t *testing.T) {
	fc := &fakeConn{}
	n := newNATSNotifier(fc, "blogbuilder.builds", nil)
	n.logger = discardLogger()

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	err := n.Publish(t.Context(), BuildEvent{BuildID: "b1", Outcome: "success", Posts: 3, Pages: 9, Timestamp: at})
	require.NoError(t, err)

	assert.Equal(t, "blogbuilder.builds", fc.subject)
	var got BuildEvent
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, "b1", got.BuildID)
	assert.Equal(t, 9, got.Pages)
	assert.True(t, got.Timestamp.Equal(at))

	require.NoError(t, n.Close())
	assert.True(t, fc.closed)
}

func TestNATSNotifierPublishError(t *testing.T) {
	n := newNATSNotifier(&fakeConn{publishErr: stderrors.New("connection closed")}, "s", discardLogger())
	err := n.Publish(t.Context(), BuildEvent{BuildID: "b1"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.Publish(t.Context(), BuildEvent{}))
	assert.NoError(t, n.Close())
}
