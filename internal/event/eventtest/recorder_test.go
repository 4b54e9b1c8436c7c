package eventtest

import (
	"testing"

	"iqscalar-service/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	assert.Empty(t, r.Types())

	var p event.Publisher = r
	require.NoError(t, p.Publish(event.AuthLogin, map[string]string{"userId": "u1"}))
	require.NoError(t, p.Publish(event.AuthLogout, nil))

	assert.Equal(t, []string{event.AuthLogin, event.AuthLogout}, r.Types())
	assert.Equal(t, map[string]string{"userId": "u1"}, r.Events[0].Payload)
}
